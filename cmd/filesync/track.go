package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/filesync/pkg/filesync/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track DIR",
	Short: "Write a tracking file for a directory tree",
	Long: `Track walks DIR, captures metadata for every entry, and writes the
listing to the tracking file inside DIR. The tracking file path is printed
on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

// runTrack is the track command handler.
func runTrack(_ *cobra.Command, args []string) error {
	absPath, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	workers := viper.GetInt("workers")
	if workers == 0 {
		workers = cfg.Workers
	}
	exclude := viper.GetStringSlice("exclude")
	if len(exclude) == 0 {
		exclude = cfg.Exclude
	}

	path, err := tracker.Track(absPath, tracker.Options{
		Prefixes: viper.GetStringSlice("prefix"),
		Exclude:  exclude,
		Workers:  workers,
	})
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

// resolveDir expands and validates a directory argument.
func resolveDir(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}

	return absPath, nil
}
