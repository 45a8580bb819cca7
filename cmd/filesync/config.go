package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/filesync/pkg/filesync/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage filesync configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/filesync/config.yaml (if set)
  2. ~/.config/filesync/config.yaml

Environment variables can override config file settings using the FILESYNC_ prefix:
  FILESYNC_WORKERS=16
  FILESYNC_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	configPath, err := configFilePath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(configPath); statErr == nil {
		fmt.Printf("Config file: %s\n\n", configPath)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("workers:                %d\n", cfg.Workers)
	fmt.Printf("exclude:                %v\n", cfg.Exclude)
	fmt.Printf("logging.level:          %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:           %s\n", cfg.Logging.Path)
	fmt.Printf("logging.console_level:  %s\n", cfg.Logging.ConsoleLevel)
	fmt.Printf("logging.components:     %v\n", cfg.Logging.Components)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"FILESYNC_WORKERS",
		"FILESYNC_EXCLUDE",
		"FILESYNC_LOGGING_LEVEL",
		"FILESYNC_LOGGING_PATH",
		"FILESYNC_LOGGING_CONSOLE_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists: %s\n", configPath)
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file: %s\n", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	fmt.Println(configPath)
	return nil
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
