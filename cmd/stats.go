package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/learning"
)

var (
	statsConfig    string
	statsModelPath string
	statsTopTokens int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trained model statistics",
	Long:  `Show training counts, bucket usage and the most indicative tokens per class`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.LoadConfig(statsConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		if statsModelPath != "" {
			cfg.Model.File.ModelPath = statsModelPath
		}
		if cmd.Flags().Changed("top") {
			cfg.Report.TopTokens = statsTopTokens
		}

		classifier, err := learning.NewClassifier(cfg)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %v", err)
		}
		defer classifier.Close()

		switch c := classifier.(type) {
		case *learning.Model:
			if err := c.Load(cfg.Model.File.ModelPath); err != nil {
				return fmt.Errorf("failed to load model: %v", err)
			}
			c.PrintStats(os.Stdout, cfg.Report.TopTokens)

		case *learning.RedisModel:
			info, err := c.Info()
			if err != nil {
				return fmt.Errorf("failed to load model stats: %v", err)
			}

			fmt.Printf("🧠 Multinomial Naive Bayes Model (Redis)\n")
			fmt.Printf("════════════════════════════════════════\n")
			fmt.Printf("Training Data:\n")
			for _, label := range info.Labels {
				fmt.Printf("  %-8s %d messages, %d tokens\n", label+":", info.Docs[label], info.TokenTotals[label])
			}
			fmt.Printf("  Distinct buckets: %d / %d\n", info.DistinctBuckets, info.Dims)
			fmt.Printf("  Smoothing alpha: %.2f\n", info.Alpha)
			if !info.LastTrained.IsZero() {
				fmt.Printf("  Last trained: %s\n", info.LastTrained.Format("2006-01-02 15:04:05"))
			}
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsConfig, "config", "c", "", "Configuration file path")
	statsCmd.Flags().StringVarP(&statsModelPath, "model", "m", "", "Path to trained model (overrides config)")
	statsCmd.Flags().IntVar(&statsTopTokens, "top", 10, "Number of top tokens per class")
}
