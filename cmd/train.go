package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/dataset"
	"github.com/hamlet-ml/hamlet/pkg/learning"
)

var (
	trainInput     string
	trainConfig    string
	trainModelPath string
	trainTestRatio float64
	trainSeed      int64
	trainReset     bool
	trainVerbose   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the naive Bayes model on a labeled dataset",
	Long: `Train the multinomial naive Bayes model on a labeled message dataset.

The dataset is split into train/test partitions with a seeded shuffle; the
model is fitted on the training partition and, when a holdout exists, its
accuracy on the held-out messages is reported. Use 'hamlet evaluate' for
the full confusion matrix and precision/recall report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.LoadConfig(trainConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		// Flag overrides
		if trainModelPath != "" {
			cfg.Model.File.ModelPath = trainModelPath
		}
		if cmd.Flags().Changed("test-ratio") {
			cfg.Split.TestRatio = trainTestRatio
		}
		if cmd.Flags().Changed("seed") {
			cfg.Split.Seed = trainSeed
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %v", err)
		}

		// Load dataset
		records, err := dataset.Load(trainInput, &cfg.Dataset)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %v", err)
		}

		trainSet, testSet := records.Split(cfg.Split.TestRatio, cfg.Split.Seed, cfg.Split.Stratify)

		fmt.Printf("🧠 HAMLET Training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📁 Dataset: %s (%d messages)\n", trainInput, len(records))
		for _, label := range records.Labels() {
			fmt.Printf("   %-8s %d\n", label+":", records.CountByLabel()[label])
		}
		fmt.Printf("✂️  Split: %d train / %d test (ratio %.2f, seed %d)\n",
			len(trainSet), len(testSet), cfg.Split.TestRatio, cfg.Split.Seed)
		fmt.Printf("🗄️  Backend: %s\n", cfg.Model.Backend)
		if trainReset {
			fmt.Printf("🔄 Reset mode: starting fresh\n")
		}
		fmt.Printf("\n")

		classifier, err := learning.NewClassifier(cfg)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %v", err)
		}
		defer classifier.Close()

		// Load or reset existing state
		if model, ok := classifier.(*learning.Model); ok && !trainReset {
			if _, err := os.Stat(cfg.Model.File.ModelPath); err == nil {
				if err := model.Load(cfg.Model.File.ModelPath); err != nil {
					fmt.Printf("⚠️  Failed to load existing model: %v\n", err)
					fmt.Printf("🔄 Starting with fresh model...\n")
				} else {
					fmt.Printf("📚 Loaded existing model from: %s\n", cfg.Model.File.ModelPath)
				}
			}
		}
		if trainReset {
			if err := classifier.Reset(); err != nil {
				return fmt.Errorf("failed to reset model: %v", err)
			}
		}

		start := time.Now()

		for i, record := range trainSet {
			if err := classifier.Train(record.Label, record.Text); err != nil {
				return fmt.Errorf("failed to train on message %d: %v", i+1, err)
			}
			if trainVerbose && (i+1)%500 == 0 {
				fmt.Printf("📚 Trained %d messages...\n", i+1)
			}
		}

		duration := time.Since(start)

		// Save the model (file backend only; Redis persists as it trains)
		if model, ok := classifier.(*learning.Model); ok {
			if err := model.Save(cfg.Model.File.ModelPath); err != nil {
				return fmt.Errorf("failed to save model: %v", err)
			}
			fmt.Printf("💾 Model saved to: %s\n", cfg.Model.File.ModelPath)
		}

		fmt.Printf("\n🎉 Training complete!\n")
		fmt.Printf("📊 Messages trained: %d\n", len(trainSet))
		fmt.Printf("⏱️  Time taken: %v\n", duration)
		if duration > 0 {
			fmt.Printf("📈 Rate: %.0f messages/second\n", float64(len(trainSet))/duration.Seconds())
		}

		// Quick holdout check
		if len(testSet) > 0 {
			correct := 0
			for _, record := range testSet {
				pred, err := classifier.Classify(record.Text)
				if err != nil {
					return fmt.Errorf("failed to classify holdout message: %v", err)
				}
				if pred.Label == record.Label {
					correct++
				}
			}
			fmt.Printf("\n🎯 Holdout accuracy: %.4f (%d/%d)\n",
				float64(correct)/float64(len(testSet)), correct, len(testSet))
			fmt.Printf("💡 Run 'hamlet evaluate -i %s' for the full report\n", trainInput)
		}

		// Print model statistics
		if model, ok := classifier.(*learning.Model); ok {
			fmt.Printf("\n")
			model.PrintStats(os.Stdout, cfg.Report.TopTokens)
		}

		return nil
	},
}

func init() {
	trainCmd.Flags().StringVarP(&trainInput, "input", "i", "", "Labeled dataset file (TSV or CSV)")
	trainCmd.Flags().StringVarP(&trainConfig, "config", "c", "", "Configuration file path")
	trainCmd.Flags().StringVarP(&trainModelPath, "model", "m", "", "Path to save/load model (overrides config)")
	trainCmd.Flags().Float64Var(&trainTestRatio, "test-ratio", 0.2, "Held-out fraction (overrides config)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "Split shuffle seed (overrides config)")
	trainCmd.Flags().BoolVarP(&trainReset, "reset", "r", false, "Reset existing model and start fresh")
	trainCmd.Flags().BoolVarP(&trainVerbose, "verbose", "v", false, "Verbose output")

	trainCmd.MarkFlagRequired("input")
}
