package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/filesync/pkg/filesync/pathenc"
)

// Entry is one manifest record: the display path key plus structured
// metadata. PathKey is the sort key and identity of the entry within one
// manifest; it carries a trailing slash iff the entry is a directory.
type Entry struct {
	PathKey string
	Record  FileMeta
}

// NewEntry reads symlink-level metadata for rel under root and builds the
// entry. The final path component is never dereferenced: a symlink is
// recorded as a symlink together with its immediate target. Any read
// failure is ErrMetadataUnavailable.
func NewEntry(root string, rel pathenc.RawPath) (Entry, error) {
	full := filepath.Join(root, string(rel))

	info, err := os.Lstat(full)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: lstat %q: %v", ErrMetadataUnavailable, full, err)
	}

	ty := classify(info.Mode())

	meta := FileMeta{
		PathB64: pathenc.Encode(rel),
		Type:    ty,
		MtimeNS: info.ModTime().UnixNano(),
		Mode:    permBits(info),
	}

	if ty == TypeFile {
		size := uint64(info.Size())
		meta.Size = &size
	}

	if ty == TypeSymlink {
		target, err := os.Readlink(full)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: readlink %q: %v", ErrMetadataUnavailable, full, err)
		}
		meta.LinkTarget = target
	}

	key := pathenc.Display(rel)
	if ty == TypeDir {
		key += "/"
	}

	return Entry{PathKey: key, Record: meta}, nil
}

// classify maps a file mode to a node type. Precedence is directory, then
// regular file, then symlink, then other.
func classify(mode fs.FileMode) NodeType {
	switch {
	case mode.IsDir():
		return TypeDir
	case mode.IsRegular():
		return TypeFile
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	default:
		return TypeOther
	}
}

// marshalPair returns the JSON string of the path key and the JSON object of
// the record.
func (e Entry) marshalPair() (key, record string, err error) {
	k, err := json.Marshal(e.PathKey)
	if err != nil {
		return "", "", fmt.Errorf("marshaling path key %q: %w", e.PathKey, err)
	}
	r, err := json.Marshal(e.Record)
	if err != nil {
		return "", "", fmt.Errorf("marshaling record for %q: %w", e.PathKey, err)
	}
	return string(k), string(r), nil
}

// lineRecord mirrors FileMeta with pointers for the always-present fields,
// so that their absence is detectable after decoding.
type lineRecord struct {
	PathB64    *string  `json:"path_b64"`
	Type       NodeType `json:"ty"`
	Size       *uint64  `json:"size"`
	MtimeNS    *int64   `json:"mtime_ns"`
	Mode       *uint32  `json:"mode"`
	LinkTarget string   `json:"link_target"`
}

// ParseLine parses one manifest line strictly: a leading JSON string (the
// path key), a JSON object (the record), and nothing but whitespace after.
// Anything else, including trailing content after the record or a record
// lacking a required field, is ErrMalformedLine.
func ParseLine(line string) (Entry, error) {
	dec := json.NewDecoder(strings.NewReader(line))

	var key string
	if err := dec.Decode(&key); err != nil {
		return Entry{}, fmt.Errorf("%w: invalid path key in %q: %v", ErrMalformedLine, line, err)
	}

	var rec lineRecord
	if err := dec.Decode(&rec); err != nil {
		return Entry{}, fmt.Errorf("%w: invalid record in %q: %v", ErrMalformedLine, line, err)
	}
	if !rec.Type.valid() {
		return Entry{}, fmt.Errorf("%w: record missing node type in %q", ErrMalformedLine, line)
	}
	if rec.PathB64 == nil {
		return Entry{}, fmt.Errorf("%w: record missing path_b64 in %q", ErrMalformedLine, line)
	}
	if rec.MtimeNS == nil {
		return Entry{}, fmt.Errorf("%w: record missing mtime_ns in %q", ErrMalformedLine, line)
	}

	if _, err := dec.Token(); err != io.EOF {
		return Entry{}, fmt.Errorf("%w: trailing content in %q", ErrMalformedLine, line)
	}

	meta := FileMeta{
		PathB64:    *rec.PathB64,
		Type:       rec.Type,
		Size:       rec.Size,
		MtimeNS:    *rec.MtimeNS,
		Mode:       rec.Mode,
		LinkTarget: rec.LinkTarget,
	}
	return Entry{PathKey: key, Record: meta}, nil
}

// ParseLineKey reads only the leading JSON string from a line, ignoring
// everything after it. It tolerates a missing or malformed record, for
// callers that need identity information only.
func ParseLineKey(line string) (string, error) {
	var key string
	if err := json.NewDecoder(strings.NewReader(line)).Decode(&key); err != nil {
		return "", fmt.Errorf("%w: invalid path key in %q: %v", ErrMalformedLine, line, err)
	}
	return key, nil
}
