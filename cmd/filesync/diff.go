package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/filesync/pkg/filesync/tracker"
)

// ErrNotImplemented marks operations that are reserved but not yet built.
var ErrNotImplemented = errors.New("not implemented")

var diffCmd = &cobra.Command{
	Use:   "diff DIR_MASTER DIR_SLAVE",
	Short: "Compare master vs slave directories",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var syncCmd = &cobra.Command{
	Use:   "sync DIR_MASTER DIR_SLAVE",
	Short: "Sync slave directory to match master directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "print actions only")
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(syncCmd)
}

// runDiff loads both tracking files; the comparison itself is reserved for
// a future release.
func runDiff(_ *cobra.Command, args []string) error {
	for _, dir := range args {
		absPath, err := resolveDir(dir)
		if err != nil {
			return err
		}
		path, err := tracker.Ensure(absPath)
		if err != nil {
			return err
		}
		if _, err := tracker.Load(path); err != nil {
			return err
		}
	}
	return fmt.Errorf("diff: %w", ErrNotImplemented)
}

func runSync(_ *cobra.Command, _ []string) error {
	return fmt.Errorf("sync: %w", ErrNotImplemented)
}
