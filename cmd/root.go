package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hamlet",
	Short: "HAMLET - Bayesian ham/spam classifier",
	Long: `HAMLET is a trainable naive Bayes text classifier for spam filtering.
It loads labeled message datasets, hashes bag-of-words features into a fixed
bucket space, fits a multinomial naive Bayes model and reports accuracy, a
confusion matrix and a per-class precision/recall table.

To ham, or not to ham.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("HAMLET - Bayesian ham/spam classifier")
		fmt.Println("Use 'hamlet --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(configCmd)
}
