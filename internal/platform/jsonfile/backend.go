package jsonfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/strefethen/crud-example/internal/store"
)

// Backend implements store.Backend using a JSON file for persistence.
type Backend struct {
	path string

	mu     sync.RWMutex
	last   []byte
	closed bool
}

var _ store.Backend = (*Backend)(nil)

// NewBackend creates a file backend at the given path. The file and its
// directory are created on first save.
func NewBackend(path string) *Backend {
	return &Backend{path: path}
}

// Path returns the file location.
func (b *Backend) Path() string {
	return b.path
}

// Load reads the file from disk.
// Returns nil data if the file doesn't exist or is empty.
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, store.ErrClosed
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// Save writes the file atomically via a temp file and rename.
func (b *Backend) Save(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return store.ErrClosed
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return err
	}

	b.last = append(b.last[:0], data...)
	return nil
}

// Close marks the backend closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// wroteLast reports whether data matches the bytes of the most recent Save.
func (b *Backend) wroteLast(data []byte) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.last != nil && bytes.Equal(b.last, data)
}
