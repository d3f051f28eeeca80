package learning

import (
	"fmt"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

// Classifier defines the interface for trainable spam classifiers
type Classifier interface {
	Train(label, text string) error
	Classify(text string) (*Prediction, error)
	SpamProbability(text string) (float64, error)
	Reset() error
	Close() error
}

// NewClassifier creates the classifier backend selected by the config
func NewClassifier(cfg *config.Config) (Classifier, error) {
	modelCfg := &Config{
		Alpha:         cfg.Model.Alpha,
		SpamThreshold: cfg.Model.SpamThreshold,
		PositiveLabel: cfg.Dataset.PositiveLabel,
		LedgerSize:    cfg.Model.File.LedgerSize,
	}

	switch cfg.Model.Backend {
	case "file":
		return NewModel(cfg.Features, modelCfg), nil

	case "redis":
		redisCfg, err := RedisConfigFromBackend(&cfg.Model.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisModel(cfg.Features, modelCfg, redisCfg)

	default:
		return nil, fmt.Errorf("unknown model backend: %s", cfg.Model.Backend)
	}
}

// Ensure both implementations satisfy the interface
var _ Classifier = (*Model)(nil)      // File-based implementation
var _ Classifier = (*RedisModel)(nil) // Redis implementation
