// Package store manages the on-disk tracking file inside a tracked
// directory. Acquisition is idempotent and non-destructive: the file is
// created if absent and opened without truncation otherwise, so an acquire
// never erases content. Content is replaced only through Overwrite.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TrackingFilename is the reserved name of the manifest file inside a
// tracked directory. The walk excludes it at the top level of the tree.
const TrackingFilename = "filesync_tracking.txt"

// ErrNotADirectory indicates that the target directory is missing or not a
// directory.
var ErrNotADirectory = errors.New("not a directory")

// ErrUnexpectedFileType indicates that the tracking path exists but is not
// a regular file, and will not be clobbered.
var ErrUnexpectedFileType = errors.New("unexpected file type at tracking path")

// Acquire opens or creates the tracking file in dir for read and write,
// without truncating existing content. It fails if dir is not a directory,
// or if the tracking path exists as anything other than a regular file.
// The caller owns the returned handle.
func Acquire(dir string) (*os.File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %v", ErrNotADirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrNotADirectory, dir)
	}

	path := filepath.Join(dir, TrackingFilename)

	switch fi, err := os.Lstat(path); {
	case errors.Is(err, os.ErrNotExist):
		// Absent: will be created below.
	case err != nil:
		return nil, fmt.Errorf("lstat %q: %w", path, err)
	case !fi.Mode().IsRegular():
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedFileType, path)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	return f, nil
}

// Overwrite replaces the file's content with the given lines, one per line
// with a trailing newline each. This is the only operation that truncates.
func Overwrite(f *os.File, lines []string) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncating %q: %w", f.Name(), err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("rewinding %q: %w", f.Name(), err)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("writing %q: %w", f.Name(), err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %q: %w", f.Name(), err)
	}
	return nil
}
