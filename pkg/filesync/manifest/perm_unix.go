//go:build unix

package manifest

import (
	"io/fs"
	"syscall"
)

// permBits extracts the low 12 mode bits (permissions plus
// setuid/setgid/sticky) from the platform stat data.
func permBits(info fs.FileInfo) *uint32 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	mode := uint32(st.Mode) & 0o7777
	return &mode
}
