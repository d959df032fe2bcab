package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter implements EventEmitter by calling registered
// handlers synchronously, in registration order.
type InMemoryEventEmitter struct {
	handlers map[uint64]EventHandler
	order    []uint64
	nextID   uint64
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new in-memory event emitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make(map[uint64]EventHandler),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a handler and returns a function that removes it.
// The returned function is safe to call more than once.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.handlers[id] = handler
	e.order = append(e.order, id)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))

	var once sync.Once
	return func() {
		once.Do(func() { e.unregister(id) })
	}
}

func (e *InMemoryEventEmitter) unregister(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.handlers, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.logger.Debug("unregistered event handler", "handler_count", len(e.handlers))
}

// HandlerCount returns the number of registered handlers.
func (e *InMemoryEventEmitter) HandlerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}

// EmitEvent sends the event to every registered handler. Every handler runs
// even if an earlier one fails; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, 0, len(e.order))
	for _, id := range e.order {
		handlers = append(handlers, e.handlers[id])
	}
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"task_id", event.TaskID,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
