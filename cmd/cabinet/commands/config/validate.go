package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/cabinet/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the Cabinet configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  cabinet config validate

  # Validate specific config file
  cabinet config validate --config /etc/cabinet/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	if cfg.API.IsEnabled() && cfg.API.JWT.Secret == "" {
		warnings = append(warnings, "JWT secret not configured - API authentication will fail")
	}
	if cfg.API.IsEnabled() && len(cfg.Users) == 0 {
		warnings = append(warnings, "No users configured - nobody can log in")
	}
	if !cfg.Metrics.Enabled {
		warnings = append(warnings, "Metrics collection is disabled")
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Store type:      %s\n", cfg.Store.Type)
	fmt.Printf("  Blob store:      %s\n", cfg.Blob.Type)
	fmt.Printf("  API port:        %d\n", cfg.API.Port)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)
	fmt.Printf("  Users:           %d\n", len(cfg.Users))

	return nil
}
