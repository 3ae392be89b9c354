package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/cabinet/internal/cli/prompt"
	"github.com/cabinetfs/cabinet/pkg/config"
	"github.com/cabinetfs/cabinet/pkg/identity"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Initialize a Cabinet configuration file with an admin user.

The command walks through an interactive setup: it asks for the admin
username and password, generates a random JWT secret, and writes the
configuration with sensible defaults (SQLite metadata store, filesystem
blob store).

By default, the configuration file is created at $XDG_CONFIG_HOME/cabinet/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  cabinet init

  # Initialize with custom path
  cabinet init --config /etc/cabinet/config.yaml

  # Force overwrite existing config
  cabinet init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		ok, err := prompt.ConfirmWithForce(
			fmt.Sprintf("Configuration file %s already exists. Overwrite?", configPath), initForce)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	username, err := prompt.InputWithValidation("Admin username", func(input string) error {
		if input == "" {
			return fmt.Errorf("username is required")
		}
		return nil
	})
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}

	password, err := prompt.NewPassword()
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}

	passwordHash, err := identity.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	secret, err := generateJWTSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	cfg := config.GetDefaultConfig()
	cfg.API.JWT.Secret = secret
	cfg.Users = []identity.User{
		{
			Username:     username,
			PasswordHash: passwordHash,
			OwnerID:      1,
			DisplayName:  username,
			Enabled:      true,
		},
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: cabinet start")
	fmt.Printf("  3. Or specify custom config: cabinet start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT secret has been generated for development use.")
	fmt.Println("  For production, generate a secure secret and use an environment variable:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Println("    export CABINET_API_JWT_SECRET=$(openssl rand -hex 32)")

	return nil
}

// generateJWTSecret returns a 64-character hex string (32 bytes of entropy).
func generateJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
