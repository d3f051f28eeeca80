package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/learning"
)

var (
	classifyConfig    string
	classifyModelPath string
	classifyFile      string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Classify a single message",
	Long: `Classify a single message and print its label and spam probability.

The message is taken from the command line, from --file, or from stdin
when neither is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.LoadConfig(classifyConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		if classifyModelPath != "" {
			cfg.Model.File.ModelPath = classifyModelPath
		}

		// Resolve message source
		var text string
		switch {
		case len(args) > 0:
			text = args[0]
		case classifyFile != "":
			data, err := os.ReadFile(classifyFile)
			if err != nil {
				return fmt.Errorf("failed to read message file: %v", err)
			}
			text = string(data)
		default:
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %v", err)
			}
			text = string(data)
		}

		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("message is empty")
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

		start := time.Now()
		pred, err := classifier.Classify(text)
		if err != nil {
			return fmt.Errorf("failed to classify message: %v", err)
		}
		spamProb, err := classifier.SpamProbability(text)
		if err != nil {
			return fmt.Errorf("failed to score message: %v", err)
		}
		duration := time.Since(start)

		verdict := "HAM (Clean)"
		if spamProb >= cfg.Model.SpamThreshold {
			verdict = "SPAM"
		}

		fmt.Printf("HAMLET Classification:\n")
		fmt.Printf("Label: %s\n", pred.Label)
		fmt.Printf("Spam probability: %.4f (threshold %.2f)\n", spamProb, cfg.Model.SpamThreshold)
		fmt.Printf("Verdict: %s\n", verdict)
		fmt.Printf("Processing time: %.2fms\n", float64(duration.Nanoseconds())/1e6)

		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyConfig, "config", "c", "", "Configuration file path")
	classifyCmd.Flags().StringVarP(&classifyModelPath, "model", "m", "", "Path to trained model (overrides config)")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Read the message from a file")
}
