package manifest

import (
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/jamesainslie/filesync/pkg/filesync/pathenc"
	"github.com/mattn/go-runewidth"
)

// Manifest is the ordered collection of entries for one tree. Entries are
// kept sorted by path key using byte-wise string comparison; the walk's
// enumeration order never shows through.
type Manifest struct {
	entries []Entry
}

// New builds a sorted Manifest from the given entries.
func New(entries []Entry) Manifest {
	m := Manifest{entries: entries}
	m.Sort()
	return m
}

// Entries returns a copy of the entries in sorted order. Callers cannot
// disturb the manifest's ordering through the returned slice.
func (m Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m Manifest) Len() int {
	return len(m.entries)
}

// Sort re-sorts entries by path key. Go string comparison is byte-wise, so
// ordering is locale-independent.
func (m *Manifest) Sort() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].PathKey < m.entries[j].PathKey
	})
}

// Build reads metadata for every relative path under root and collects the
// results into a sorted Manifest. Metadata reads fan out across workers
// goroutines; each entry is independent, so the only ordering point is the
// final sort. The first read failure wins and fails the whole build.
func Build(root string, rels []pathenc.RawPath, workers int) (Manifest, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(rels) {
		workers = len(rels)
	}
	if workers < 1 {
		workers = 1
	}

	entries := make([]Entry, len(rels))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry, err := NewEntry(root, rels[i])
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				entries[i] = entry
			}
		}()
	}

	for i := range rels {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Manifest{}, firstErr
	}
	return New(entries), nil
}

// Serialize renders the manifest as aligned text lines. Each line is the
// JSON string of the path key, padded with spaces so that every record
// starts at the same visual column, followed by the JSON object of the
// record. Padding is computed from display width, not byte length, so wide
// glyphs keep the file aligned in a monospaced terminal. The returned lines
// are sorted by their rendered text; that is the persisted order.
func (m Manifest) Serialize() ([]string, error) {
	type pair struct {
		key    string
		record string
	}

	pairs := make([]pair, len(m.entries))
	for i, e := range m.entries {
		k, r, err := e.marshalPair()
		if err != nil {
			return nil, err
		}
		pairs[i] = pair{key: k, record: r}
	}

	padTo := 0
	for _, p := range pairs {
		if w := runewidth.StringWidth(p.key); w > padTo {
			padTo = w
		}
	}
	padTo += 2 // minimum gap between columns

	lines := make([]string, len(pairs))
	for i, p := range pairs {
		gap := padTo - runewidth.StringWidth(p.key)
		lines[i] = p.key + strings.Repeat(" ", gap) + p.record
	}

	sort.Strings(lines)
	return lines, nil
}

// Deserialize parses rendered manifest content back into a Manifest. Blank
// lines are skipped; any other line must parse strictly or the whole read
// fails. Entries are re-sorted by path key, not by rendered text — the two
// orders can differ when keys tie, and re-serializing restores the
// rendered-text order.
func Deserialize(content string) (Manifest, error) {
	var entries []Entry
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			return Manifest{}, err
		}
		entries = append(entries, entry)
	}
	return New(entries), nil
}
