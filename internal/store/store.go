package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// DocumentStore holds the in-memory snapshot of the persisted document.
// The backend is the source of truth: every Update and View re-reads it first
// because another process may have rewritten it out of band.
type DocumentStore struct {
	backend Backend
	logger  *slog.Logger

	// mu serialises ReadAll+mutate+Write sequences.
	mu  sync.Mutex
	doc Document
}

// New creates a DocumentStore over the given backend.
func New(backend Backend, logger *slog.Logger) (*DocumentStore, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &DocumentStore{
		backend: backend,
		logger:  logger.With("component", "document_store"),
	}
	s.doc.normalize()
	return s, nil
}

// ReadAll loads the full persisted document into memory.
func (s *DocumentStore) ReadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll(ctx)
}

// Write flushes the full in-memory document to the backend.
func (s *DocumentStore) Write(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx)
}

// Update runs fn against a freshly loaded document and persists the result.
// If fn returns an error nothing is written and the error is returned as is.
func (s *DocumentStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readAll(ctx); err != nil {
		return err
	}

	if err := fn(&s.doc); err != nil {
		// Drop whatever fn changed before failing.
		if reloadErr := s.readAll(ctx); reloadErr != nil {
			s.logger.Warn("failed to discard rejected changes", "error", reloadErr)
		}
		return err
	}

	return s.write(ctx)
}

// View runs fn against a copy of a freshly loaded document.
func (s *DocumentStore) View(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	if err := s.readAll(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	return fn(&snapshot)
}

// Snapshot returns a copy of the in-memory document without re-reading it.
func (s *DocumentStore) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.Clone()
}

// Close releases the backend.
func (s *DocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.Close()
}

func (s *DocumentStore) readAll(ctx context.Context) error {
	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load document", "error", err)
		return NewStoreError("document", "read", "failed to load document", err)
	}

	var doc Document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Error("failed to decode document", "error", err, "bytes", len(data))
			return NewStoreError("document", "read", "failed to decode document",
				fmt.Errorf("%w: %v", ErrCorruptDocument, err))
		}
	}
	doc.normalize()

	s.doc = doc
	return nil
}

func (s *DocumentStore) write(ctx context.Context) error {
	s.doc.normalize()

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return NewStoreError("document", "write", "failed to encode document", err)
	}

	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Error("failed to save document", "error", err)
		return NewStoreError("document", "write", "failed to save document", err)
	}

	s.logger.Debug("document written",
		"items", len(s.doc.Items),
		"tasks", len(s.doc.Tasks),
		"bytes", len(data))
	return nil
}
