// Package stores implements persistence for tasks, settings, and the
// notification log on top of an opaque key-value blob contract.
package stores

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Blob is the persistent key-value contract. A missing key is not an
// error; callers fall back to defaults.
type Blob interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
}

// FileBlob implements Blob with one JSON file per key in a directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a half-written value behind.
type FileBlob struct {
	dir string
	mu  sync.Mutex
	log zerolog.Logger
}

// NewFileBlob creates a blob store rooted at dir.
func NewFileBlob(dir string, log zerolog.Logger) *FileBlob {
	return &FileBlob{
		dir: dir,
		log: log.With().Str("cmp", "blob").Logger(),
	}
}

// Get reads the value for key. Returns false when the key is missing or
// the file cannot be read; read failures are logged, never fatal.
func (b *FileBlob) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Error().Err(err).Str("key", key).Msg("blob read failed")
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Set writes the value for key atomically. A failed write triggers one
// cleanup-and-retry pass before giving up.
func (b *FileBlob) Set(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.write(key, data); err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("blob write failed, retrying after cleanup")
		b.cleanup()
		if err := b.write(key, data); err != nil {
			b.log.Error().Err(err).Str("key", key).Msg("blob write failed")
			return fmt.Errorf("write blob %s: %w", key, err)
		}
	}
	return nil
}

func (b *FileBlob) write(key string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}

	path := b.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// cleanup removes stale temp files left by interrupted writes.
func (b *FileBlob) cleanup() {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			_ = os.Remove(filepath.Join(b.dir, entry.Name()))
		}
	}
}

func (b *FileBlob) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}
