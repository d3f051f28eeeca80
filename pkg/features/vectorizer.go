package features

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

// Vectorizer turns message text into sparse bag-of-words count vectors
// over a fixed hashed bucket space. Hashing is deterministic, so vectors
// are stable across runs and processes.
type Vectorizer struct {
	dims                uint32
	mask                uint64
	minTokenLength      int
	maxTokenLength      int
	useBigrams          bool
	maxTokensPerMessage int
}

// NewVectorizer creates a vectorizer from feature configuration
func NewVectorizer(cfg *config.FeaturesConfig) *Vectorizer {
	dims := uint32(1) << cfg.HashBits

	return &Vectorizer{
		dims:                dims,
		mask:                uint64(dims - 1),
		minTokenLength:      cfg.MinTokenLength,
		maxTokenLength:      cfg.MaxTokenLength,
		useBigrams:          cfg.UseBigrams,
		maxTokensPerMessage: cfg.MaxTokensPerMessage,
	}
}

// Dims returns the size of the bucket space
func (v *Vectorizer) Dims() uint32 {
	return v.dims
}

// Tokenize extracts normalized tokens from text: lowercase words within
// the configured length bounds, plus adjacent-pair bigrams when enabled.
func (v *Vectorizer) Tokenize(text string) []string {
	words := splitWords(text)

	var tokens []string

	for _, word := range words {
		if v.inBounds(word) {
			tokens = append(tokens, word)
		}
	}

	if v.useBigrams {
		for i := 0; i+1 < len(words); i++ {
			w1, w2 := words[i], words[i+1]
			if v.inBounds(w1) && v.inBounds(w2) {
				tokens = append(tokens, w1+" "+w2)
			}
		}
	}

	// Cap tokens so a single oversized message cannot dominate training
	if v.maxTokensPerMessage > 0 && len(tokens) > v.maxTokensPerMessage {
		tokens = tokens[:v.maxTokensPerMessage]
	}

	return tokens
}

// inBounds reports whether a word satisfies the token length bounds
func (v *Vectorizer) inBounds(word string) bool {
	return len(word) >= v.minTokenLength && len(word) <= v.maxTokenLength
}

// Bucket maps a token into the hashed bucket space
func (v *Vectorizer) Bucket(token string) uint32 {
	return uint32(xxhash.Sum64String(token) & v.mask)
}

// Vector returns the sparse bucket->count vector for text. Buckets with
// zero counts never appear in the map.
func (v *Vectorizer) Vector(text string) map[uint32]int {
	tokens := v.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	vec := make(map[uint32]int, len(tokens))
	for _, token := range tokens {
		vec[v.Bucket(token)]++
	}

	return vec
}

// splitWords lowercases text and splits it on non-letter/digit runs
func splitWords(text string) []string {
	text = strings.ToLower(text)

	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
