// Package pathenc provides lossless encoding of raw filesystem path bytes
// for the filesync tracking manifest. Paths as seen by the operating system
// are arbitrary byte sequences; pathenc moves them through text transports
// without loss and derives a human-readable projection for display and
// sorting.
//
// The two representations are deliberately distinct types:
//
//   - RawPath is the exact byte sequence from the OS. It round-trips through
//     Encode/Decode byte-for-byte, including embedded NUL, newlines, and
//     invalid UTF-8.
//   - The display projection produced by Display is lossy (invalid sequences
//     become replacement characters) and is never converted back.
package pathenc

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RawPath is a relative filesystem path as raw OS bytes.
// It carries no encoding guarantees; treat it as opaque.
type RawPath []byte

// rawEncoding is the standard base64 alphabet without padding.
var rawEncoding = base64.StdEncoding.WithPadding(base64.NoPadding)

// Encode returns the base64 text form of p. The result contains no padding
// characters and decodes back to exactly p via Decode.
func Encode(p RawPath) string {
	return rawEncoding.EncodeToString(p)
}

// Decode reverses Encode, recovering the exact raw path bytes.
func Decode(s string) (RawPath, error) {
	b, err := rawEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding path bytes %q: %w", s, err)
	}
	return RawPath(b), nil
}

// Display returns the lossy UTF-8 projection of p, substituting one Unicode
// replacement character per invalid decoding step, so distinct invalid byte
// sequences keep distinct projections. The result is suitable as a
// human-facing sort and alignment key only; it cannot be converted back to
// the original bytes.
func Display(p RawPath) string {
	if utf8.Valid(p) {
		return string(p)
	}

	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(p[i : i+size])
		}
		i += size
	}
	return b.String()
}
