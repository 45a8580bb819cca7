package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/filesync/pkg/filesync/pathenc"
)

func TestNewEntryFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "f1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f1", "b.txt"), []byte("hello world"), 0o644))

	e, err := NewEntry(dir, pathenc.RawPath("f1/b.txt"))
	require.NoError(t, err)

	assert.Equal(t, "f1/b.txt", e.PathKey)
	assert.Equal(t, TypeFile, e.Record.Type)
	require.NotNil(t, e.Record.Size)
	assert.Equal(t, uint64(11), *e.Record.Size)
	assert.Empty(t, e.Record.LinkTarget)
	assert.Greater(t, e.Record.MtimeNS, int64(0))

	raw, err := pathenc.Decode(e.Record.PathB64)
	require.NoError(t, err)
	assert.Equal(t, "f1/b.txt", string(raw))
}

func TestNewEntryEmptyFileHasZeroSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), nil, 0o644))

	e, err := NewEntry(dir, pathenc.RawPath("empty"))
	require.NoError(t, err)

	require.NotNil(t, e.Record.Size)
	assert.Equal(t, uint64(0), *e.Record.Size)
}

func TestNewEntryDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	e, err := NewEntry(dir, pathenc.RawPath("sub"))
	require.NoError(t, err)

	assert.Equal(t, "sub/", e.PathKey, "directory keys carry a trailing slash")
	assert.Equal(t, TypeDir, e.Record.Type)
	assert.Nil(t, e.Record.Size)
}

func TestNewEntrySymlink(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "f1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f1", "b.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "f2"), 0o755))
	require.NoError(t, os.Symlink("../f1/b.txt", filepath.Join(dir, "f2", "link")))

	e, err := NewEntry(dir, pathenc.RawPath("f2/link"))
	require.NoError(t, err)

	assert.Equal(t, "f2/link", e.PathKey)
	assert.Equal(t, TypeSymlink, e.Record.Type)
	assert.Equal(t, "../f1/b.txt", e.Record.LinkTarget)
	assert.Nil(t, e.Record.Size, "symlinks carry no size")
}

func TestNewEntrySymlinkToDirectoryStaysSymlink(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))
	require.NoError(t, os.Symlink("target", filepath.Join(dir, "link")))

	e, err := NewEntry(dir, pathenc.RawPath("link"))
	require.NoError(t, err)

	assert.Equal(t, TypeSymlink, e.Record.Type)
	assert.Equal(t, "link", e.PathKey, "no trailing slash even when the target is a directory")
}

func TestNewEntryDanglingSymlink(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.Symlink("nowhere", filepath.Join(dir, "dangling")))

	e, err := NewEntry(dir, pathenc.RawPath("dangling"))
	require.NoError(t, err, "the link itself is the entry, not its target")
	assert.Equal(t, "nowhere", e.Record.LinkTarget)
}

func TestNewEntryModeBits(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o640))

	e, err := NewEntry(dir, pathenc.RawPath("x"))
	require.NoError(t, err)

	require.NotNil(t, e.Record.Mode)
	assert.Equal(t, uint32(0o640), *e.Record.Mode)
}

func TestNewEntryMissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewEntry(t.TempDir(), pathenc.RawPath("no/such/entry"))
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	t.Run("valid line", func(t *testing.T) {
		t.Parallel()
		line := `"f1/a.txt"    {"path_b64":"ZjEvYS50eHQ","ty":"file","size":0,"mtime_ns":123}`

		e, err := ParseLine(line)
		require.NoError(t, err)
		assert.Equal(t, "f1/a.txt", e.PathKey)
		assert.Equal(t, TypeFile, e.Record.Type)
		require.NotNil(t, e.Record.Size)
		assert.Equal(t, uint64(0), *e.Record.Size)
		assert.Equal(t, int64(123), e.Record.MtimeNS)
	})

	t.Run("no separator spaces required", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k"{"path_b64":"aw","ty":"dir","mtime_ns":1}`)
		assert.NoError(t, err)
	})

	t.Run("trailing whitespace tolerated", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","ty":"dir","mtime_ns":1}   `)
		assert.NoError(t, err)
	})

	t.Run("trailing content rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","ty":"dir","mtime_ns":1} extra`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("trailing JSON rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","ty":"dir","mtime_ns":1} {"again":true}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("missing record rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k"`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("invalid path key rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`not-json {"ty":"dir","mtime_ns":1}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("unknown node type rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","ty":"pipe","mtime_ns":1}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("missing node type rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","mtime_ns":1}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("missing mtime_ns rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"path_b64":"aw","ty":"dir"}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})

	t.Run("missing path_b64 rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLine(`"k" {"ty":"dir","mtime_ns":1}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})
}

func TestParseLineKey(t *testing.T) {
	t.Parallel()

	t.Run("reads only the leading string", func(t *testing.T) {
		t.Parallel()
		key, err := ParseLineKey(`"f1/a.txt"  this is not json at all`)
		require.NoError(t, err)
		assert.Equal(t, "f1/a.txt", key)
	})

	t.Run("bare key accepted", func(t *testing.T) {
		t.Parallel()
		key, err := ParseLineKey(`"f1/a.txt"`)
		require.NoError(t, err)
		assert.Equal(t, "f1/a.txt", key)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ParseLineKey(`{"ty":"dir"}`)
		assert.ErrorIs(t, err, ErrMalformedLine)
	})
}

func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TypeDir, classify(os.ModeDir))
	assert.Equal(t, TypeFile, classify(0))
	assert.Equal(t, TypeSymlink, classify(os.ModeSymlink))
	assert.Equal(t, TypeOther, classify(os.ModeSocket))
	assert.Equal(t, TypeOther, classify(os.ModeDevice))
	assert.Equal(t, TypeOther, classify(os.ModeNamedPipe))
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	_, err := NewEntry(t.TempDir(), pathenc.RawPath("missing"))
	assert.True(t, errors.Is(err, ErrMetadataUnavailable))
	assert.NotErrorIs(t, err, ErrMalformedLine)
}
