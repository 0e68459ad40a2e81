package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

var configForce bool

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := configPath
	configDir := filepath.Dir(configFile)

	// Create directories
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configFile); err == nil && !configForce {
		fmt.Printf("Config file already exists at %s\n", configFile)
		fmt.Println("Use 'seobrief config show' to view current configuration")
		return nil
	}

	// Write default config
	if err := os.WriteFile(configFile, []byte(config.Template), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg, err := config.Parse([]byte(config.Template))
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. export %s=...   # keyword ideas and briefs from Gemini (optional)\n", config.EnvGeminiKey)
	fmt.Printf("  2. export %s=...     # search result lookups (optional)\n", config.EnvSerpKey)
	fmt.Println("  3. seobrief research \"podcast microphones\"")
	fmt.Println()
	fmt.Println("Without keys, seobrief uses its offline keyword catalog and skips result lookups.")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found; built-in defaults are in use.")
			fmt.Println("Run 'seobrief config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := config.Parse(data); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n\n", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}
