package jsonfile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 50 * time.Millisecond

// Watcher reports edits made to the document file by anything other than
// the backend itself, such as an operator fixing the file by hand.
type Watcher struct {
	backend  *Backend
	watcher  *fsnotify.Watcher
	onChange func()
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	wg sync.WaitGroup
}

// NewWatcher watches the backend's directory. onChange runs on its own
// goroutine, debounced, after each external modification.
func NewWatcher(backend *Backend, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(backend.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watching the directory survives the rename in Save replacing the file.
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	return &Watcher{
		backend:  backend,
		watcher:  fw,
		onChange: onChange,
		logger:   logger.With("component", "document_watcher", "path", backend.path),
	}, nil
}

// Start processes filesystem events in the background until ctx is
// cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops watching and any pending debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Clean(event.Name) != filepath.Clean(w.backend.path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.check)
}

func (w *Watcher) check() {
	data, err := os.ReadFile(w.backend.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("failed to read changed document", "error", err)
		}
		return
	}
	if w.backend.wroteLast(data) {
		return
	}

	w.logger.Info("document modified externally", "bytes", len(data))
	if w.onChange != nil {
		w.onChange()
	}
}
