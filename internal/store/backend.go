package store

import (
	"context"
	"sync"
)

// Backend persists the raw bytes of the document.
// Load returns nil data, not an error, when nothing has been saved yet.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// MemoryBackend keeps the document in process memory. State survives for the
// lifetime of the value only; it is meant for tests and throwaway runs.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns a copy of the last saved bytes.
func (b *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.data == nil {
		return nil, nil
	}

	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Save replaces the stored bytes.
func (b *MemoryBackend) Save(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.data = make([]byte, len(data))
	copy(b.data, data)
	return nil
}

// Close marks the backend closed. Further calls fail with ErrClosed.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
