package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_WriteRead(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	err := m.WriteFile("/out/a.html", []byte("x"), 0o644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.MkdirAll("/out/sub", 0o755))
	require.NoError(t, m.WriteFile("/out/sub/../a.html", []byte("hello"), 0o644))

	data, err := m.ReadFile("/out/a.html")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// Returned slices are copies.
	data[0] = 'j'
	again, err := m.ReadFile("/out/a.html")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))

	info, err := m.Stat("/out/a.html")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.False(t, info.IsDir())

	info, err = m.Stat("/out/sub")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFileSystem_MkdirAllOverFile(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("/f", nil, 0o644))
	err := m.MkdirAll("/f/g", 0o755)
	assert.True(t, errors.Is(err, fs.ErrExist))
}

func TestMemoryFileSystem_RemoveNonEmptyDir(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("/d", 0o755))
	require.NoError(t, m.WriteFile("/d/f", nil, 0o644))
	assert.True(t, errors.Is(m.Remove("/d"), fs.ErrExist))
	require.NoError(t, m.Remove("/d/f"))
	require.NoError(t, m.Remove("/d"))
	assert.True(t, errors.Is(m.Remove("/d"), fs.ErrNotExist))
}

func TestMemoryFileSystem_EvalSymlinks(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("/a/b", 0o755))
	got, err := m.EvalSymlinks("/a/./b/")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)

	_, err = m.EvalSymlinks("/missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWriteFileAtomic_Memory(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("/out", 0o755))
	require.NoError(t, m.WriteFile("/out/r.html", []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(m, "/out/r.html", []byte("new"), 0o644))
	data, err := m.ReadFile("/out/r.html")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.Equal(t, []string{"/out/r.html"}, m.Files())
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	err := WriteFileAtomic(m, "/nope/r.html", []byte("x"), 0o644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Empty(t, m.Files())
}

func TestWriteFileAtomic_OS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "r.html")
	require.NoError(t, WriteFileAtomic(OSFileSystem{}, name, []byte("data"), 0o644))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOSFileSystem_EvalSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	got, err := OSFileSystem{}.EvalSymlinks(link)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
