package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/store"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *store.DocumentStore {
	t.Helper()
	s, err := store.New(store.NewMemoryBackend(), nil)
	require.NoError(t, err)
	return s
}

func price(v float64) *float64 {
	return &v
}

func validInput(name string) domain.ItemInput {
	return domain.ItemInput{Name: name, Description: name + " description", Price: price(10)}
}

// scheduledCall records one ScheduleCompletion invocation.
type scheduledCall struct {
	TaskID string
	Delay  time.Duration
}

// MockScheduler implements Scheduler for testing.
type MockScheduler struct {
	mu    sync.Mutex
	Calls []scheduledCall
	Err   error
}

func (m *MockScheduler) ScheduleCompletion(taskID string, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, scheduledCall{TaskID: taskID, Delay: delay})
	return m.Err
}

// failingStore fails every call with Err.
type failingStore struct {
	Err error
}

func (f failingStore) Update(ctx context.Context, fn func(doc *store.Document) error) error {
	return store.NewStoreError("document", "write", "failed to save document", f.Err)
}

func (f failingStore) View(ctx context.Context, fn func(doc *store.Document) error) error {
	return store.NewStoreError("document", "read", "failed to load document", f.Err)
}

var errDisk = errors.New("disk unavailable")
