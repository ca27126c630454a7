package stores

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlob(t *testing.T) *FileBlob {
	t.Helper()
	return NewFileBlob(t.TempDir(), zerolog.Nop())
}

func TestFileBlob_GetMissing(t *testing.T) {
	b := newTestBlob(t)

	_, ok := b.Get("nope")
	assert.False(t, ok)
}

func TestFileBlob_SetGet(t *testing.T) {
	b := newTestBlob(t)

	require.NoError(t, b.Set("tasks", []byte(`{"a":1}`)))

	got, ok := b.Get("tasks")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestFileBlob_Overwrite(t *testing.T) {
	b := newTestBlob(t)

	require.NoError(t, b.Set("k", []byte("one")))
	require.NoError(t, b.Set("k", []byte("two")))

	got, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), got)
}

func TestFileBlob_EmptyFileIsMissing(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBlob(dir, zerolog.Nop())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), nil, 0o644))

	_, ok := b.Get("k")
	assert.False(t, ok)
}

func TestFileBlob_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewFileBlob(dir, zerolog.Nop())

	require.NoError(t, b.Set("k", []byte("v")))

	_, ok := b.Get("k")
	assert.True(t, ok)
}

func TestFileBlob_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBlob(dir, zerolog.Nop())

	require.NoError(t, b.Set("k", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())
}
