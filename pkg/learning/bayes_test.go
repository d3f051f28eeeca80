package learning

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

func testFeatures() config.FeaturesConfig {
	return config.FeaturesConfig{
		HashBits:            16,
		MinTokenLength:      2,
		MaxTokenLength:      32,
		UseBigrams:          true,
		MaxTokensPerMessage: 1000,
	}
}

func trainedModel(t *testing.T) *Model {
	t.Helper()

	m := NewModel(testFeatures(), nil)

	spam := []string{
		"WINNER! You have won a free prize, call now to claim",
		"Free entry in our weekly competition, text WIN now",
		"Urgent! Your mobile number has won cash, ring immediately",
		"Congratulations, you have been selected for a free voucher",
	}
	ham := []string{
		"Hey, are we still on for lunch tomorrow?",
		"Running late, meet you at the station around seven",
		"Can you pick up milk on the way home?",
		"Meeting moved to Thursday, see you there",
	}

	for _, text := range spam {
		if err := m.Train("spam", text); err != nil {
			t.Fatalf("Failed to train spam: %v", err)
		}
	}
	for _, text := range ham {
		if err := m.Train("ham", text); err != nil {
			t.Fatalf("Failed to train ham: %v", err)
		}
	}

	return m
}

func TestClassify(t *testing.T) {
	m := trainedModel(t)

	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "clear spam",
			text:     "You have won a free prize! Call now",
			expected: "spam",
		},
		{
			name:     "clear ham",
			text:     "Are we still meeting for lunch at the station?",
			expected: "ham",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := m.Classify(tc.text)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}

			if pred.Label != tc.expected {
				t.Errorf("Classify(%q) = %s, expected %s (probs %v)",
					tc.text, pred.Label, tc.expected, pred.Probabilities)
			}

			var sum float64
			for _, p := range pred.Probabilities {
				if p < 0 || p > 1 {
					t.Errorf("Posterior %f out of [0,1]", p)
				}
				sum += p
			}
			if sum < 0.999 || sum > 1.001 {
				t.Errorf("Posteriors sum to %f, expected 1", sum)
			}
		})
	}
}

func TestClassifyUntrained(t *testing.T) {
	m := NewModel(testFeatures(), nil)

	if _, err := m.Classify("anything"); err == nil {
		t.Error("Expected error classifying with untrained model")
	}
}

func TestSpamProbability(t *testing.T) {
	m := trainedModel(t)

	spamProb, err := m.SpamProbability("WINNER! Free prize, call now to claim your cash")
	if err != nil {
		t.Fatalf("SpamProbability failed: %v", err)
	}
	if spamProb <= 0.5 {
		t.Errorf("Expected spam probability > 0.5 for spammy text, got %f", spamProb)
	}

	hamProb, err := m.SpamProbability("meet you at the station for lunch tomorrow")
	if err != nil {
		t.Fatalf("SpamProbability failed: %v", err)
	}
	if hamProb >= 0.5 {
		t.Errorf("Expected spam probability < 0.5 for hammy text, got %f", hamProb)
	}
}

func TestSpamProbabilityNoTokens(t *testing.T) {
	m := trainedModel(t)

	prob, err := m.SpamProbability("!!!")
	if err != nil {
		t.Fatalf("SpamProbability failed: %v", err)
	}
	if prob != 0.5 {
		t.Errorf("Expected neutral 0.5 for token-free text, got %f", prob)
	}
}

func TestClassifyEmptyTextUsesPriors(t *testing.T) {
	m := NewModel(testFeatures(), nil)

	// Three spam, one ham: priors favor spam
	for i := 0; i < 3; i++ {
		if err := m.Train("spam", "free prize winner"); err != nil {
			t.Fatalf("Train failed: %v", err)
		}
	}
	if err := m.Train("ham", "lunch tomorrow"); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	pred, err := m.Classify("")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if pred.Label != "spam" {
		t.Errorf("Expected prior-only prediction 'spam', got %s", pred.Label)
	}
}

func TestSaveLoad(t *testing.T) {
	m := trainedModel(t)

	path := filepath.Join(t.TempDir(), "model.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewModel(config.FeaturesConfig{HashBits: 8, MinTokenLength: 1, MaxTokenLength: 8}, nil)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Feature settings travel with the model
	if loaded.vectorizer.Dims() != m.vectorizer.Dims() {
		t.Errorf("Loaded dims %d, expected %d", loaded.vectorizer.Dims(), m.vectorizer.Dims())
	}

	text := "You have won a free prize! Call now"

	origPred, err := m.Classify(text)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	loadedPred, err := loaded.Classify(text)
	if err != nil {
		t.Fatalf("Classify after load failed: %v", err)
	}

	if origPred.Label != loadedPred.Label {
		t.Errorf("Prediction changed after save/load: %s vs %s", origPred.Label, loadedPred.Label)
	}

	origProb := origPred.Probabilities["spam"]
	loadedProb := loadedPred.Probabilities["spam"]
	if diff := origProb - loadedProb; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Posterior changed after save/load: %f vs %f", origProb, loadedProb)
	}
}

func TestLoadMissingFile(t *testing.T) {
	m := NewModel(testFeatures(), nil)

	if err := m.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error loading missing model file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	m := NewModel(testFeatures(), nil)
	if err := m.Load(path); err == nil {
		t.Error("Expected error loading malformed model file")
	}
}

func TestLoadRejectsBadFeatureSettings(t *testing.T) {
	m := trainedModel(t)

	path := filepath.Join(t.TempDir(), "model.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Tamper with the persisted feature settings; hash_bits >= 32 would
	// collapse the bucket space to zero
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read model file: %v", err)
	}

	var in modelFile
	if err := json.Unmarshal(data, &in); err != nil {
		t.Fatalf("Failed to decode model file: %v", err)
	}
	in.Features.HashBits = 40

	data, err = json.Marshal(in)
	if err != nil {
		t.Fatalf("Failed to encode model file: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write model file: %v", err)
	}

	loaded := NewModel(testFeatures(), nil)
	if err := loaded.Load(path); err == nil {
		t.Error("Expected error loading model with out-of-range hash_bits")
	}
}

func TestReset(t *testing.T) {
	m := trainedModel(t)

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	info := m.Info()
	if len(info.Labels) != 0 || info.DistinctBuckets != 0 || info.LedgerSize != 0 {
		t.Errorf("Expected empty model after reset, got %+v", info)
	}

	if _, err := m.Classify("anything"); err == nil {
		t.Error("Expected error classifying after reset")
	}
}

func TestInfo(t *testing.T) {
	m := trainedModel(t)

	info := m.Info()

	if len(info.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %v", info.Labels)
	}
	if info.Labels[0] != "ham" || info.Labels[1] != "spam" {
		t.Errorf("Expected sorted labels [ham spam], got %v", info.Labels)
	}
	if info.Docs["spam"] != 4 || info.Docs["ham"] != 4 {
		t.Errorf("Unexpected doc counts: %v", info.Docs)
	}
	if info.DistinctBuckets == 0 {
		t.Error("Expected non-zero distinct buckets")
	}
	if info.LastTrained.IsZero() {
		t.Error("Expected last trained timestamp to be set")
	}
}

func TestTopTokens(t *testing.T) {
	m := trainedModel(t)

	top := m.TopTokens("spam", 5)
	if len(top) == 0 {
		t.Fatal("Expected top spam tokens")
	}
	if len(top) > 5 {
		t.Errorf("Expected at most 5 tokens, got %d", len(top))
	}

	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Errorf("Top tokens not sorted by score: %f before %f",
				top[i-1].Score, top[i].Score)
		}
	}

	// A token trained only as spam should score high for spam
	seen := make(map[string]float64)
	for _, stats := range top {
		seen[stats.Token] = stats.Score
	}
	if score, ok := seen["winner"]; ok && score <= 0.5 {
		t.Errorf("Expected 'winner' to lean spam, got score %f", score)
	}
}

func TestTrainEmptyLabel(t *testing.T) {
	m := NewModel(testFeatures(), nil)

	if err := m.Train("", "some text"); err == nil {
		t.Error("Expected error training with empty label")
	}
}
