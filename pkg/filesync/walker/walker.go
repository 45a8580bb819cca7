// Package walker enumerates the relative paths of a directory tree for
// manifest construction. It is built on fastwalk for parallel traversal and
// never follows symlinks during descent: a symlinked directory is listed as
// a single entry, not expanded.
package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/jamesainslie/filesync/pkg/filesync/logging"
	"github.com/jamesainslie/filesync/pkg/filesync/pathenc"
)

// Options configures a walk.
type Options struct {
	// TrackingName is a reserved filename excluded at the top level of the
	// walk. Deeper entries with the same name are kept.
	TrackingName string

	// Prefixes restricts the walk to subtrees whose relative path starts
	// with one of the given prefixes (component-wise). Ancestor
	// directories of a prefix are descended but not emitted. Empty means
	// no restriction.
	Prefixes []string

	// Exclude contains glob patterns matched against relative paths;
	// matching directories are pruned, matching files skipped.
	Exclude []string
}

// Walk enumerates root and returns the relative path of every entry below
// it, excluding root itself and the top-level tracking file. Traversal
// errors on individual entries are skipped rather than failing the walk.
// The returned order is unspecified; callers sort.
func Walk(root string, opts Options) ([]pathenc.RawPath, error) {
	globs, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	root = filepath.Clean(root)
	logger := logging.Get("walker")

	var (
		mu   sync.Mutex
		rels []pathenc.RawPath
	)

	conf := fastwalk.Config{
		Follow: false,
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return skipEntry(logger, path, d, err)
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if rel == opts.TrackingName {
			return nil
		}

		if excluded(rel, globs) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if len(opts.Prefixes) > 0 {
			switch prefixMatch(rel, opts.Prefixes) {
			case matchInside:
				// fall through and record
			case matchAncestor:
				// On the way to an allowed subtree: descend without
				// recording.
				return nil
			case matchNone:
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		mu.Lock()
		rels = append(rels, pathenc.RawPath(rel))
		mu.Unlock()
		return nil
	}

	if err := fastwalk.Walk(&conf, root, walkFn); err != nil {
		return nil, err
	}
	return rels, nil
}

// skipEntry tolerates a traversal error on one entry: it is logged and the
// walk goes on, pruning the subtree when the entry is known to be a
// directory.
func skipEntry(logger *logging.Logger, path string, d fs.DirEntry, err error) error {
	logger.Warn("skipping unreadable entry", "path", path, "error", err)
	if d != nil && d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

type prefixRelation int

const (
	matchNone prefixRelation = iota
	matchInside
	matchAncestor
)

// prefixMatch relates rel to the allowed prefixes, component-wise: "sub/a"
// matches "sub/a" and anything below it, and "sub" is an ancestor of it.
func prefixMatch(rel string, prefixes []string) prefixRelation {
	relation := matchNone
	for _, p := range prefixes {
		p = strings.TrimSuffix(filepath.Clean(p), "/")
		if p == "" || p == "." {
			return matchInside
		}
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return matchInside
		}
		if strings.HasPrefix(p, rel+"/") {
			relation = matchAncestor
		}
	}
	return relation
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func excluded(rel string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
