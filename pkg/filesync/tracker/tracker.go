// Package tracker orchestrates manifest construction for one tracked
// directory: acquire the tracking file, walk the tree, read metadata in
// parallel, serialize, and write the listing back into the directory.
package tracker

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jamesainslie/filesync/pkg/filesync/logging"
	"github.com/jamesainslie/filesync/pkg/filesync/manifest"
	"github.com/jamesainslie/filesync/pkg/filesync/store"
	"github.com/jamesainslie/filesync/pkg/filesync/walker"
)

// Options configures a tracking run.
type Options struct {
	// Prefixes restricts the walk to the given relative subtrees.
	// Empty means the whole tree.
	Prefixes []string

	// Exclude contains relative-path glob patterns to skip.
	Exclude []string

	// Workers is the number of concurrent metadata readers.
	// Zero or negative selects a default.
	Workers int
}

// Ensure acquires the tracking file in dir without touching its content and
// returns its path. Acquisition is idempotent: repeated calls never erase
// what is already there.
func Ensure(dir string) (string, error) {
	f, err := store.Acquire(dir)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %q: %w", path, err)
	}
	return path, nil
}

// Track builds a full manifest of dir and writes it to the tracking file,
// replacing previous content. It returns the tracking file path.
func Track(dir string, opts Options) (string, error) {
	logger := logging.Get("tracker").With("run", uuid.New().String())

	f, err := store.Acquire(dir)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rels, err := walker.Walk(dir, walker.Options{
		TrackingName: store.TrackingFilename,
		Prefixes:     opts.Prefixes,
		Exclude:      opts.Exclude,
	})
	if err != nil {
		return "", fmt.Errorf("walking %q: %w", dir, err)
	}
	logger.Debug("walk complete", "dir", dir, "entries", len(rels))

	m, err := manifest.Build(dir, rels, opts.Workers)
	if err != nil {
		return "", err
	}

	lines, err := m.Serialize()
	if err != nil {
		return "", err
	}

	if err := store.Overwrite(f, lines); err != nil {
		return "", err
	}

	logger.Info("tracking file written",
		"path", f.Name(),
		"entries", m.Len(),
		"total", humanize.IBytes(totalBytes(m)))
	return f.Name(), nil
}

// Load reads a tracking file and parses it into a Manifest, for consumers
// that compare two trees.
func Load(path string) (manifest.Manifest, error) {
	content, err := ReadRendered(path)
	if err != nil {
		return manifest.Manifest{}, err
	}
	return manifest.Deserialize(content)
}

// ReadRendered returns the raw rendered content of a tracking file.
func ReadRendered(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return string(b), nil
}

// ReadPathKeys returns only the path keys of a tracking file, using the
// lenient line reader: records after the leading JSON string are ignored
// and need not be well-formed.
func ReadPathKeys(path string) ([]string, error) {
	content, err := ReadRendered(path)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		key, err := manifest.ParseLineKey(line)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func totalBytes(m manifest.Manifest) uint64 {
	var total uint64
	for _, e := range m.Entries() {
		if e.Record.Size != nil {
			total += *e.Record.Size
		}
	}
	return total
}
