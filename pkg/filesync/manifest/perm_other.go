//go:build !unix

package manifest

import "io/fs"

// permBits returns nil on platforms without Unix mode bits; the mode field
// is omitted from the record.
func permBits(info fs.FileInfo) *uint32 {
	return nil
}
