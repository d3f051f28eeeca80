package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents hamlet configuration
type Config struct {
	// Dataset loading settings
	Dataset DatasetConfig `yaml:"dataset"`

	// Train/test split settings
	Split SplitConfig `yaml:"split"`

	// Feature hashing settings
	Features FeaturesConfig `yaml:"features"`

	// Classifier settings
	Model ModelConfig `yaml:"model"`

	// Evaluation report settings
	Report ReportConfig `yaml:"report"`
}

// DatasetConfig controls how labeled message tables are read
type DatasetConfig struct {
	// Format: "auto", "tsv" or "csv"
	Format string `yaml:"format"`

	// CSV column names (header row required for csv format)
	LabelColumn string `yaml:"label_column"`
	TextColumn  string `yaml:"text_column"`

	// Label treated as the positive (spam) class
	PositiveLabel string `yaml:"positive_label"`
}

// SplitConfig controls the train/test partitioning
type SplitConfig struct {
	// Fraction of records held out for evaluation
	TestRatio float64 `yaml:"test_ratio"`

	// Shuffle seed; same seed reproduces the same partitions
	Seed int64 `yaml:"seed"`

	// Preserve per-label proportions across partitions
	Stratify bool `yaml:"stratify"`
}

// FeaturesConfig controls the hashing vectorizer. It carries JSON tags as
// well because trained models persist the feature settings they were
// fitted with.
type FeaturesConfig struct {
	// Bucket space is 1<<hash_bits
	HashBits uint `json:"hash_bits" yaml:"hash_bits"`

	// Token length bounds
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length"`
	MaxTokenLength int `json:"max_token_length" yaml:"max_token_length"`

	// Add adjacent-pair bigram tokens
	UseBigrams bool `json:"use_bigrams" yaml:"use_bigrams"`

	// Cap on tokens taken from a single message
	MaxTokensPerMessage int `json:"max_tokens_per_message" yaml:"max_tokens_per_message"`
}

// ModelConfig contains classifier settings
type ModelConfig struct {
	// Backend selection: "file" or "redis"
	Backend string `yaml:"backend"`

	// Laplace/Lidstone smoothing factor
	Alpha float64 `yaml:"alpha"`

	// Posterior probability above which a message is called spam
	SpamThreshold float64 `yaml:"spam_threshold"`

	// File-based backend settings
	File FileBackendConfig `yaml:"file"`

	// Redis-based backend settings
	Redis RedisBackendConfig `yaml:"redis"`
}

// FileBackendConfig contains file-based model settings
type FileBackendConfig struct {
	// Model file path
	ModelPath string `yaml:"model_path"`

	// Cap on the bucket->token ledger kept for stats reporting
	LedgerSize int `yaml:"ledger_size"`
}

// RedisBackendConfig contains Redis-based model settings
type RedisBackendConfig struct {
	// Redis connection
	RedisURL    string `yaml:"redis_url"`
	KeyPrefix   string `yaml:"key_prefix"`
	DatabaseNum int    `yaml:"database_num"`

	// Minimum trained documents per class before classification
	MinLearns int `yaml:"min_learns"`

	// Key expiration, duration string like "720h" (empty = no expiry)
	TokenTTL string `yaml:"token_ttl"`

	// Pipeline batch size for reset/scan operations
	BatchSize int `yaml:"batch_size"`
}

// ReportConfig contains evaluation report settings
type ReportConfig struct {
	// Number of top spam/ham tokens shown by stats and evaluate
	TopTokens int `yaml:"top_tokens"`
}

// DefaultConfig returns hamlet default configuration
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Format:        "auto",
			LabelColumn:   "label",
			TextColumn:    "text",
			PositiveLabel: "spam",
		},
		Split: SplitConfig{
			TestRatio: 0.2,
			Seed:      42,
			Stratify:  true,
		},
		Features: FeaturesConfig{
			HashBits:            20,
			MinTokenLength:      2,
			MaxTokenLength:      32,
			UseBigrams:          true,
			MaxTokensPerMessage: 1000,
		},
		Model: ModelConfig{
			Backend:       "file",
			Alpha:         1.0,
			SpamThreshold: 0.5,
			File: FileBackendConfig{
				ModelPath:  "hamlet-model.json",
				LedgerSize: 10000,
			},
			Redis: RedisBackendConfig{
				RedisURL:    "redis://localhost:6379",
				KeyPrefix:   "hamlet:bayes",
				DatabaseNum: 0,
				MinLearns:   1,
				TokenTTL:    "",
				BatchSize:   100,
			},
		},
		Report: ReportConfig{
			TopTokens: 10,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	// Write to file
	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// Validate validates the feature settings. Models persist these settings,
// so loading also validates them through this method.
func (f *FeaturesConfig) Validate() error {
	if f.HashBits < 8 || f.HashBits > 30 {
		return fmt.Errorf("hash_bits must be between 8 and 30")
	}

	if f.MinTokenLength < 1 {
		return fmt.Errorf("min_token_length must be >= 1")
	}

	if f.MaxTokenLength < f.MinTokenLength {
		return fmt.Errorf("max_token_length must be >= min_token_length")
	}

	if f.MaxTokensPerMessage < 1 {
		return fmt.Errorf("max_tokens_per_message must be >= 1")
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Dataset.Format {
	case "auto", "tsv", "csv":
	default:
		return fmt.Errorf("dataset format must be 'auto', 'tsv' or 'csv'")
	}

	if c.Dataset.PositiveLabel == "" {
		return fmt.Errorf("positive_label cannot be empty")
	}

	if c.Split.TestRatio < 0 || c.Split.TestRatio >= 1 {
		return fmt.Errorf("test_ratio must be in [0, 1)")
	}

	if err := c.Features.Validate(); err != nil {
		return err
	}

	if c.Model.Backend != "file" && c.Model.Backend != "redis" {
		return fmt.Errorf("model backend must be 'file' or 'redis'")
	}

	if c.Model.Alpha <= 0 {
		return fmt.Errorf("alpha must be > 0")
	}

	if c.Model.SpamThreshold <= 0 || c.Model.SpamThreshold >= 1 {
		return fmt.Errorf("spam_threshold must be in (0, 1)")
	}

	if c.Model.Backend == "redis" {
		if c.Model.Redis.RedisURL == "" {
			return fmt.Errorf("redis_url cannot be empty when backend is 'redis'")
		}
		if c.Model.Redis.BatchSize < 1 {
			return fmt.Errorf("redis batch_size must be >= 1")
		}
	}

	if c.Report.TopTokens < 0 {
		return fmt.Errorf("top_tokens must be >= 0")
	}

	return nil
}
