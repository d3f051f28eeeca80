package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage HAMLET configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with all options`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "config.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		// Check if file already exists
		if _, err := os.Stat(configPath); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		// Generate default config
		defaultConfig := config.DefaultConfig()

		// Save to file
		err := defaultConfig.SaveConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("📝 Edit the file to customize features and model settings\n")
		fmt.Printf("🚀 Use 'hamlet train --config %s' to use the configuration\n", configPath)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax and logical errors`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]

		// Load and validate config
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %v", err)
		}

		fmt.Printf("✅ Configuration is valid: %s\n", configPath)

		// Print summary
		fmt.Printf("\n📊 Configuration Summary:\n")
		fmt.Printf("  Model backend: %s\n", cfg.Model.Backend)
		fmt.Printf("  Hash bits: %d (%d buckets)\n", cfg.Features.HashBits, 1<<cfg.Features.HashBits)
		fmt.Printf("  Bigrams: %v\n", cfg.Features.UseBigrams)
		fmt.Printf("  Smoothing alpha: %.2f\n", cfg.Model.Alpha)
		fmt.Printf("  Spam threshold: %.2f\n", cfg.Model.SpamThreshold)
		fmt.Printf("  Test ratio: %.2f (seed %d, stratify %v)\n",
			cfg.Split.TestRatio, cfg.Split.Seed, cfg.Split.Stratify)

		return nil
	},
}

func init() {
	configGenCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")

	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
}
