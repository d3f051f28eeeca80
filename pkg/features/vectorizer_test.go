package features

import (
	"reflect"
	"testing"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

func testConfig() *config.FeaturesConfig {
	return &config.FeaturesConfig{
		HashBits:            16,
		MinTokenLength:      2,
		MaxTokenLength:      32,
		UseBigrams:          false,
		MaxTokensPerMessage: 1000,
	}
}

func TestTokenize(t *testing.T) {
	v := NewVectorizer(testConfig())

	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "simple words",
			text:     "Free prize waiting",
			expected: []string{"free", "prize", "waiting"},
		},
		{
			name:     "punctuation stripped",
			text:     "WINNER!!! Call 0800-123456 now...",
			expected: []string{"winner", "call", "0800", "123456", "now"},
		},
		{
			name:     "short tokens dropped",
			text:     "a b meeting at 5",
			expected: []string{"meeting", "at"},
		},
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
		{
			name:     "only punctuation",
			text:     "!!! ??? ...",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := v.Tokenize(tc.text)
			if !reflect.DeepEqual(tokens, tc.expected) {
				t.Errorf("Tokenize(%q) = %v, expected %v", tc.text, tokens, tc.expected)
			}
		})
	}
}

func TestTokenizeBigrams(t *testing.T) {
	cfg := testConfig()
	cfg.UseBigrams = true
	v := NewVectorizer(cfg)

	tokens := v.Tokenize("free prize now")

	expected := []string{"free", "prize", "now", "free prize", "prize now"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Tokenize with bigrams = %v, expected %v", tokens, expected)
	}
}

func TestTokenizeBigramsLengthBounds(t *testing.T) {
	cfg := testConfig()
	cfg.UseBigrams = true
	cfg.MaxTokenLength = 10
	v := NewVectorizer(cfg)

	// The overlong word is excluded from unigrams and from bigrams alike
	tokens := v.Tokenize("free supercalifragilistic prize")

	expected := []string{"free", "prize"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Tokenize = %v, expected %v", tokens, expected)
	}
}

func TestTokenizeCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTokensPerMessage = 3
	v := NewVectorizer(cfg)

	tokens := v.Tokenize("one two three four five")
	if len(tokens) != 3 {
		t.Errorf("Expected 3 tokens after cap, got %d", len(tokens))
	}
}

func TestVectorCounts(t *testing.T) {
	v := NewVectorizer(testConfig())

	vec := v.Vector("spam spam ham")

	spamBucket := v.Bucket("spam")
	hamBucket := v.Bucket("ham")

	if vec[spamBucket] != 2 {
		t.Errorf("Expected count 2 for repeated token, got %d", vec[spamBucket])
	}
	if vec[hamBucket] != 1 {
		t.Errorf("Expected count 1, got %d", vec[hamBucket])
	}

	for bucket, count := range vec {
		if count <= 0 {
			t.Errorf("Vector contains non-positive count %d for bucket %d", count, bucket)
		}
	}
}

func TestVectorEmpty(t *testing.T) {
	v := NewVectorizer(testConfig())

	if vec := v.Vector("!!!"); vec != nil {
		t.Errorf("Expected nil vector for token-free text, got %v", vec)
	}
}

func TestBucketDeterministic(t *testing.T) {
	v1 := NewVectorizer(testConfig())
	v2 := NewVectorizer(testConfig())

	words := []string{"free", "winner", "meeting", "tomorrow", "prize"}
	for _, word := range words {
		if v1.Bucket(word) != v2.Bucket(word) {
			t.Errorf("Bucket(%q) differs between vectorizer instances", word)
		}
		if v1.Bucket(word) >= v1.Dims() {
			t.Errorf("Bucket(%q) = %d out of range %d", word, v1.Bucket(word), v1.Dims())
		}
	}
}

func TestDims(t *testing.T) {
	cfg := testConfig()
	cfg.HashBits = 10
	v := NewVectorizer(cfg)

	if v.Dims() != 1024 {
		t.Errorf("Expected 1024 dims for 10 hash bits, got %d", v.Dims())
	}
}
