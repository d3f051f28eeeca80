package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/dataset"
	"github.com/hamlet-ml/hamlet/pkg/learning"
	"github.com/hamlet-ml/hamlet/pkg/metrics"
)

var (
	evalInput     string
	evalConfig    string
	evalModelPath string
	evalTestRatio float64
	evalSeed      int64
	evalAll       bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the model and print the classification report",
	Long: `Evaluate the trained model against a labeled dataset.

By default the dataset is split with the same seeded shuffle used by
'hamlet train' and only the held-out partition is scored, so evaluation
never touches messages the model was fitted on. The report covers
accuracy, the confusion matrix and per-class precision/recall/F1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.LoadConfig(evalConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		// Flag overrides
		if evalModelPath != "" {
			cfg.Model.File.ModelPath = evalModelPath
		}
		if cmd.Flags().Changed("test-ratio") {
			cfg.Split.TestRatio = evalTestRatio
		}
		if cmd.Flags().Changed("seed") {
			cfg.Split.Seed = evalSeed
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %v", err)
		}

		// Load dataset
		records, err := dataset.Load(evalInput, &cfg.Dataset)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %v", err)
		}

		testSet := records
		if !evalAll {
			_, testSet = records.Split(cfg.Split.TestRatio, cfg.Split.Seed, cfg.Split.Stratify)
			if len(testSet) == 0 {
				return fmt.Errorf("held-out partition is empty (test_ratio %.2f); use --all to score the full dataset", cfg.Split.TestRatio)
			}
		}

		// Create classifier and load trained state
		classifier, err := learning.NewClassifier(cfg)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %v", err)
		}
		defer classifier.Close()

		if model, ok := classifier.(*learning.Model); ok {
			if err := model.Load(cfg.Model.File.ModelPath); err != nil {
				return fmt.Errorf("failed to load model: %v", err)
			}
		}

		fmt.Printf("🔬 HAMLET Evaluation\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📁 Dataset: %s\n", evalInput)
		if evalAll {
			fmt.Printf("📊 Scoring full dataset: %d messages\n", len(testSet))
		} else {
			fmt.Printf("📊 Scoring held-out partition: %d of %d messages (ratio %.2f, seed %d)\n",
				len(testSet), len(records), cfg.Split.TestRatio, cfg.Split.Seed)
		}
		fmt.Printf("\n")

		cm := metrics.NewConfusionMatrix(records.Labels())

		start := time.Now()
		for _, record := range testSet {
			pred, err := classifier.Classify(record.Text)
			if err != nil {
				return fmt.Errorf("failed to classify message: %v", err)
			}
			if err := cm.Add(record.Label, pred.Label); err != nil {
				return fmt.Errorf("failed to record result: %v", err)
			}
		}
		duration := time.Since(start)

		report := metrics.Report(cm)

		fmt.Printf("🎯 Accuracy: %.4f (%d messages in %v)\n\n", report.Accuracy, cm.Total(), duration)

		fmt.Printf("📊 Confusion Matrix:\n")
		cm.Render(os.Stdout)
		fmt.Printf("\n")

		fmt.Printf("📋 Classification Report:\n")
		report.Render(os.Stdout)

		// Top-token table for the file backend
		if model, ok := classifier.(*learning.Model); ok && cfg.Report.TopTokens > 0 {
			for _, label := range model.Labels() {
				fmt.Printf("\n📈 Top %s tokens:\n", label)
				for i, token := range model.TopTokens(label, cfg.Report.TopTokens) {
					fmt.Printf("  %2d. %-20s (%.3f score, %d/%d)\n",
						i+1, token.Token, token.Score, token.LabelCount, token.OtherCount)
				}
			}
		}

		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalInput, "input", "i", "", "Labeled dataset file (TSV or CSV)")
	evaluateCmd.Flags().StringVarP(&evalConfig, "config", "c", "", "Configuration file path")
	evaluateCmd.Flags().StringVarP(&evalModelPath, "model", "m", "", "Path to trained model (overrides config)")
	evaluateCmd.Flags().Float64Var(&evalTestRatio, "test-ratio", 0.2, "Held-out fraction (overrides config)")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", 42, "Split shuffle seed (overrides config)")
	evaluateCmd.Flags().BoolVar(&evalAll, "all", false, "Score the full dataset instead of the held-out partition")

	evaluateCmd.MarkFlagRequired("input")
}
