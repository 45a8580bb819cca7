// Package manifest builds, orders, and (de)serializes the tracking manifest
// for one directory tree: one typed record per filesystem entry, rendered as
// aligned, human-diffable text lines.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMetadataUnavailable indicates that metadata for a resolved entry could
// not be read.
var ErrMetadataUnavailable = errors.New("metadata unavailable")

// ErrMalformedLine indicates that a manifest line could not be parsed.
var ErrMalformedLine = errors.New("malformed manifest line")

// NodeType classifies a filesystem entry. It is determined from
// symlink-level metadata, so a symlink is always TypeSymlink regardless of
// its target.
type NodeType string

// The closed set of node types.
const (
	TypeFile    NodeType = "file"
	TypeDir     NodeType = "dir"
	TypeSymlink NodeType = "symlink"
	TypeOther   NodeType = "other"
)

func (t NodeType) valid() bool {
	switch t {
	case TypeFile, TypeDir, TypeSymlink, TypeOther:
		return true
	}
	return false
}

// UnmarshalJSON rejects values outside the closed set.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	nt := NodeType(s)
	if !nt.valid() {
		return fmt.Errorf("unknown node type %q", s)
	}
	*t = nt
	return nil
}

// FileMeta is the metadata record for one manifest entry. Optional fields
// are pointers so that zero values (an empty file, mode 0) still serialize.
type FileMeta struct {
	// PathB64 is the base64 form of the raw relative path bytes, without
	// padding. It round-trips even when the display key is lossy.
	PathB64 string `json:"path_b64"`

	// Type classifies the entry.
	Type NodeType `json:"ty"`

	// Size is the byte count, present only for regular files.
	Size *uint64 `json:"size,omitempty"`

	// MtimeNS is the modification time in nanoseconds since the Unix
	// epoch, negative for pre-epoch times.
	MtimeNS int64 `json:"mtime_ns"`

	// Mode holds the low 12 permission bits where the platform provides
	// them, omitted otherwise.
	Mode *uint32 `json:"mode,omitempty"`

	// LinkTarget is the immediate symlink target (one level, not fully
	// resolved), present only for symlinks. Best-effort UTF-8.
	LinkTarget string `json:"link_target,omitempty"`
}
