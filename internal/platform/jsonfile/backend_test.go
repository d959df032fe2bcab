package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/platform/jsonfile"
	"github.com/strefethen/crud-example/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_LoadMissingFile(t *testing.T) {
	t.Parallel()

	b := jsonfile.NewBackend(filepath.Join(t.TempDir(), "db.json"))

	data, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestBackend_SaveCreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "db.json")
	b := jsonfile.NewBackend(path)
	assert.Equal(t, path, b.Path())

	require.NoError(t, b.Save(context.Background(), []byte(`{"items":[],"tasks":[]}`)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"tasks":[]}`, string(raw))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestBackend_Closed(t *testing.T) {
	t.Parallel()

	b := jsonfile.NewBackend(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, b.Close())

	_, err := b.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, b.Save(context.Background(), []byte("{}")), store.ErrClosed)
}

func TestBackend_StateSurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")

	first, err := store.New(jsonfile.NewBackend(path), nil)
	require.NoError(t, err)

	item := domain.Item{
		ID:          "cv1a2b3c4d5e6f7g8h9i",
		Name:        "Widget",
		Description: "A widget",
		Price:       1,
		CreatedAt:   time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, first.Update(ctx, func(doc *store.Document) error {
		doc.AddItem(item)
		return nil
	}))

	// The file is readable as a plain JSON document with both collections.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items"`)
	assert.Contains(t, string(raw), `"tasks": []`)

	second, err := store.New(jsonfile.NewBackend(path), nil)
	require.NoError(t, err)
	require.NoError(t, second.ReadAll(ctx))
	require.Len(t, second.Snapshot().Items, 1)
	assert.Equal(t, item, second.Snapshot().Items[0])
}

func TestBackend_ExternalEditIsVisible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := store.New(jsonfile.NewBackend(path), nil)
	require.NoError(t, err)
	require.NoError(t, s.ReadAll(ctx))

	edited := `{"items":[{"id":"x","name":"Hand","description":"edited","price":2,"createdAt":"2024-01-01T00:00:00Z"}],"tasks":[]}`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	require.NoError(t, s.View(ctx, func(doc *store.Document) error {
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "Hand", doc.Items[0].Name)
		return nil
	}))
}

func TestWatcher_ReportsOnlyExternalEdits(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "db.json")
	b := jsonfile.NewBackend(path)

	var changes atomic.Int32
	w, err := jsonfile.NewWatcher(b, func() { changes.Add(1) }, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	w.Start(ctx)

	require.NoError(t, b.Save(ctx, []byte(`{"items":[],"tasks":[]}`)))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load(), "own writes are not reported")

	require.NoError(t, os.WriteFile(path, []byte(`{"items":[],"tasks":[{"id":"t"}]}`), 0o644))
	assert.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
}
