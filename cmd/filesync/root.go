package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/filesync/pkg/filesync/config"
	"github.com/jamesainslie/filesync/pkg/filesync/logging"
)

var (
	cfgFile   string
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "filesync",
		Short: "Sync directories by tracking and comparing directory trees",
		Long: `Filesync snapshots a directory tree into a deterministic, human-diffable
tracking file written into the directory itself. Future diff and sync
operations compare the tracking files of two directories.

Examples:
  filesync track ~/Downloads
  filesync track ~/Downloads -p firefox_pictures -p chrome
  filesync diff ~/Downloads ~/Pictures
  filesync sync ~/Downloads ~/Pictures --dry-run`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logging.Close()
		},
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/filesync/config.yaml)")
	rootCmd.PersistentFlags().StringSliceP("prefix", "p", nil, "only include paths under PREFIX (can be specified multiple times)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override worker count (0=use config)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("prefix", rootCmd.PersistentFlags().Lookup("prefix"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadAppConfig loads the application configuration once, honoring the
// --config flag. Flags bound to the global viper instance layer on top of
// the loaded values in the command handlers.
func loadAppConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	appConfig = cfg
	return cfg, nil
}

// setupLogging initializes the logging system from config and flags.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if getVerbose() {
		level = "debug"
	}

	consoleLevel := cfg.Logging.ConsoleLevel
	if consoleLevel == "" {
		consoleLevel = "warn"
	}
	if getVerbose() {
		consoleLevel = "debug"
	}
	if getQuiet() {
		consoleLevel = "error"
	}

	logCfg := logging.Config{
		Level:        level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}
