package learning

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/features"
)

// Model is a multinomial naive Bayes classifier over hashed bag-of-words
// features. Token counts are kept per label in the hashed bucket space;
// classification scores the joint log-likelihood of each label with
// Lidstone smoothing over the full bucket space.
type Model struct {
	mu sync.RWMutex

	// Per-label sparse bucket counts
	counts map[string]map[uint32]float64

	// Per-label total token counts
	totals map[string]float64

	// Per-label trained document counts
	docs map[string]int

	// Bounded bucket->token ledger, kept so stats can name the tokens
	// behind the most indicative buckets. First token seen per bucket
	// wins; hash collisions make the names approximate.
	ledger map[uint32]string

	// Configuration
	config      *Config
	featConfig  config.FeaturesConfig
	vectorizer  *features.Vectorizer
	lastTrained time.Time
}

// Config holds classifier configuration
type Config struct {
	// Lidstone smoothing factor
	Alpha float64 `json:"alpha"`

	// Posterior probability above which a message is called spam
	SpamThreshold float64 `json:"spam_threshold"`

	// Label treated as the positive (spam) class
	PositiveLabel string `json:"positive_label"`

	// Cap on the bucket->token ledger
	LedgerSize int `json:"ledger_size"`
}

// DefaultConfig returns default classifier configuration
func DefaultConfig() *Config {
	return &Config{
		Alpha:         1.0,
		SpamThreshold: 0.5,
		PositiveLabel: "spam",
		LedgerSize:    10000,
	}
}

// NewModel creates an untrained model with the given feature settings
func NewModel(featConfig config.FeaturesConfig, cfg *Config) *Model {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Model{
		counts:     make(map[string]map[uint32]float64),
		totals:     make(map[string]float64),
		docs:       make(map[string]int),
		ledger:     make(map[uint32]string),
		config:     cfg,
		featConfig: featConfig,
		vectorizer: features.NewVectorizer(&featConfig),
	}
}

// Prediction is the result of classifying a message
type Prediction struct {
	// Highest-posterior label
	Label string `json:"label"`

	// Posterior probability per label, summing to 1
	Probabilities map[string]float64 `json:"probabilities"`
}

// Train accumulates one labeled message into the model
func (m *Model) Train(label, text string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}

	tokens := m.vectorizer.Tokenize(text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counts[label] == nil {
		m.counts[label] = make(map[uint32]float64)
	}

	for _, token := range tokens {
		bucket := m.vectorizer.Bucket(token)
		m.counts[label][bucket]++
		m.totals[label]++

		if len(m.ledger) < m.config.LedgerSize {
			if _, exists := m.ledger[bucket]; !exists {
				m.ledger[bucket] = token
			}
		}
	}

	m.docs[label]++
	m.lastTrained = time.Now()

	return nil
}

// Classify returns the posterior distribution over labels for text
func (m *Model) Classify(text string) (*Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totalDocs := 0
	for _, n := range m.docs {
		totalDocs += n
	}
	if totalDocs == 0 {
		return nil, fmt.Errorf("model has no training data")
	}

	vec := m.vectorizer.Vector(text)
	dims := float64(m.vectorizer.Dims())

	// Joint log-likelihood per label; a message with no usable tokens
	// falls back to the class priors.
	logJoint := make(map[string]float64, len(m.docs))

	for label, docCount := range m.docs {
		score := math.Log(float64(docCount) / float64(totalDocs))

		denom := m.totals[label] + m.config.Alpha*dims
		for bucket, count := range vec {
			prob := (m.counts[label][bucket] + m.config.Alpha) / denom
			score += float64(count) * math.Log(prob)
		}

		logJoint[label] = score
	}

	return newPrediction(logJoint), nil
}

// newPrediction normalizes log joints into posteriors via log-sum-exp
func newPrediction(logJoint map[string]float64) *Prediction {
	maxLog := math.Inf(-1)
	for _, score := range logJoint {
		if score > maxLog {
			maxLog = score
		}
	}

	var sum float64
	probs := make(map[string]float64, len(logJoint))
	for label, score := range logJoint {
		p := math.Exp(score - maxLog)
		probs[label] = p
		sum += p
	}

	pred := &Prediction{Probabilities: probs}

	best := math.Inf(-1)
	for label := range probs {
		probs[label] /= sum

		// Ties break toward the lexicographically smaller label so
		// predictions are deterministic.
		if probs[label] > best || (probs[label] == best && label < pred.Label) {
			best = probs[label]
			pred.Label = label
		}
	}

	return pred
}

// SpamProbability returns the posterior of the positive label for text.
// Messages with no usable tokens score a neutral 0.5.
func (m *Model) SpamProbability(text string) (float64, error) {
	if len(m.vectorizer.Tokenize(text)) == 0 {
		return 0.5, nil
	}

	pred, err := m.Classify(text)
	if err != nil {
		return 0.5, err
	}

	return pred.Probabilities[m.config.PositiveLabel], nil
}

// Labels returns the sorted labels the model has seen
func (m *Model) Labels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]string, 0, len(m.docs))
	for label := range m.docs {
		labels = append(labels, label)
	}

	sort.Strings(labels)
	return labels
}

// TokenStats contains per-token training statistics
type TokenStats struct {
	Token      string  `json:"token"`
	LabelCount int     `json:"label_count"`
	OtherCount int     `json:"other_count"`
	Score      float64 `json:"score"`
}

// TopTokens returns the ledger tokens most indicative of a label, scored
// by the label's share of the smoothed per-label likelihoods.
func (m *Model) TopTokens(label string, limit int) []*TokenStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dims := float64(m.vectorizer.Dims())

	var stats []*TokenStats

	for bucket, token := range m.ledger {
		labelCount := m.counts[label][bucket]
		if labelCount == 0 {
			continue
		}

		var otherCount float64
		labelProb := (labelCount + m.config.Alpha) / (m.totals[label] + m.config.Alpha*dims)
		probSum := labelProb

		for other := range m.docs {
			if other == label {
				continue
			}
			otherCount += m.counts[other][bucket]
			probSum += (m.counts[other][bucket] + m.config.Alpha) /
				(m.totals[other] + m.config.Alpha*dims)
		}

		stats = append(stats, &TokenStats{
			Token:      token,
			LabelCount: int(labelCount),
			OtherCount: int(otherCount),
			Score:      labelProb / probSum,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Score != stats[j].Score {
			return stats[i].Score > stats[j].Score
		}
		return stats[i].Token < stats[j].Token
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}

	return stats
}

// ModelInfo contains model information
type ModelInfo struct {
	Labels          []string       `json:"labels"`
	Docs            map[string]int `json:"docs"`
	TokenTotals     map[string]int `json:"token_totals"`
	DistinctBuckets int            `json:"distinct_buckets"`
	LedgerSize      int            `json:"ledger_size"`
	Dims            uint32         `json:"dims"`
	Alpha           float64        `json:"alpha"`
	LastTrained     time.Time      `json:"last_trained"`
}

// Info returns information about the trained model
func (m *Model) Info() *ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[uint32]bool)
	tokenTotals := make(map[string]int, len(m.totals))

	for label, buckets := range m.counts {
		tokenTotals[label] = int(m.totals[label])
		for bucket := range buckets {
			seen[bucket] = true
		}
	}

	labels := make([]string, 0, len(m.docs))
	docs := make(map[string]int, len(m.docs))
	for label, n := range m.docs {
		labels = append(labels, label)
		docs[label] = n
	}
	sort.Strings(labels)

	return &ModelInfo{
		Labels:          labels,
		Docs:            docs,
		TokenTotals:     tokenTotals,
		DistinctBuckets: len(seen),
		LedgerSize:      len(m.ledger),
		Dims:            m.vectorizer.Dims(),
		Alpha:           m.config.Alpha,
		LastTrained:     m.lastTrained,
	}
}

// modelFile is the JSON persistence shape. Bucket keys are decimal
// strings because JSON object keys must be strings.
type modelFile struct {
	Counts      map[string]map[string]float64 `json:"counts"`
	Totals      map[string]float64            `json:"totals"`
	Docs        map[string]int                `json:"docs"`
	Ledger      map[string]string             `json:"ledger"`
	Config      *Config                       `json:"config"`
	Features    config.FeaturesConfig         `json:"features"`
	LastTrained time.Time                     `json:"last_trained"`
}

// Save saves the model to a file
func (m *Model) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := modelFile{
		Counts:      make(map[string]map[string]float64, len(m.counts)),
		Totals:      m.totals,
		Docs:        m.docs,
		Ledger:      make(map[string]string, len(m.ledger)),
		Config:      m.config,
		Features:    m.featConfig,
		LastTrained: m.lastTrained,
	}

	for label, buckets := range m.counts {
		encoded := make(map[string]float64, len(buckets))
		for bucket, count := range buckets {
			encoded[strconv.FormatUint(uint64(bucket), 10)] = count
		}
		out.Counts[label] = encoded
	}

	for bucket, token := range m.ledger {
		out.Ledger[strconv.FormatUint(uint64(bucket), 10)] = token
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode model: %v", err)
	}

	return nil
}

// Load loads a model from a file, replacing all current state including
// the feature settings the model was fitted with.
func (m *Model) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open model file: %v", err)
	}
	defer file.Close()

	var in modelFile
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&in); err != nil {
		return fmt.Errorf("failed to decode model: %v", err)
	}

	// Corrupt feature settings would break the hashed bucket space
	if err := in.Features.Validate(); err != nil {
		return fmt.Errorf("invalid model file: %v", err)
	}

	counts := make(map[string]map[uint32]float64, len(in.Counts))
	for label, encoded := range in.Counts {
		buckets := make(map[uint32]float64, len(encoded))
		for key, count := range encoded {
			bucket, err := strconv.ParseUint(key, 10, 32)
			if err != nil {
				return fmt.Errorf("failed to decode model: invalid bucket key %q", key)
			}
			buckets[uint32(bucket)] = count
		}
		counts[label] = buckets
	}

	ledger := make(map[uint32]string, len(in.Ledger))
	for key, token := range in.Ledger {
		bucket, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return fmt.Errorf("failed to decode model: invalid ledger key %q", key)
		}
		ledger[uint32(bucket)] = token
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts = counts
	m.totals = in.Totals
	m.docs = in.Docs
	m.ledger = ledger
	m.lastTrained = in.LastTrained

	if in.Config != nil {
		m.config = in.Config
	}

	m.featConfig = in.Features
	m.vectorizer = features.NewVectorizer(&m.featConfig)

	if m.totals == nil {
		m.totals = make(map[string]float64)
	}
	if m.docs == nil {
		m.docs = make(map[string]int)
	}

	return nil
}

// Reset clears all learned data
func (m *Model) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts = make(map[string]map[uint32]float64)
	m.totals = make(map[string]float64)
	m.docs = make(map[string]int)
	m.ledger = make(map[uint32]string)
	m.lastTrained = time.Time{}

	return nil
}

// Close is a no-op for the file-backed model
func (m *Model) Close() error {
	return nil
}

// PrintStats prints model statistics
func (m *Model) PrintStats(w io.Writer, topTokens int) {
	info := m.Info()

	fmt.Fprintf(w, "🧠 Multinomial Naive Bayes Model\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	fmt.Fprintf(w, "Training Data:\n")
	for _, label := range info.Labels {
		fmt.Fprintf(w, "  %-8s %d messages, %d tokens\n", label+":", info.Docs[label], info.TokenTotals[label])
	}
	fmt.Fprintf(w, "  Distinct buckets: %d / %d\n", info.DistinctBuckets, info.Dims)
	fmt.Fprintf(w, "  Token ledger: %d entries\n", info.LedgerSize)
	fmt.Fprintf(w, "  Smoothing alpha: %.2f\n", info.Alpha)

	if !info.LastTrained.IsZero() {
		fmt.Fprintf(w, "  Last trained: %s\n", info.LastTrained.Format("2006-01-02 15:04:05"))
	}

	if topTokens <= 0 {
		return
	}

	for _, label := range info.Labels {
		fmt.Fprintf(w, "\n📈 Top %s tokens:\n", label)
		for i, token := range m.TopTokens(label, topTokens) {
			fmt.Fprintf(w, "  %2d. %-20s (%.3f score, %d/%d)\n",
				i+1, token.Token, token.Score, token.LabelCount, token.OtherCount)
		}
	}

	fmt.Fprintf(w, "\n")
}
