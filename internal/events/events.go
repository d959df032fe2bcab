package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/strefethen/crud-example/internal/domain"
)

// Event types.
const (
	// TaskCompleted is emitted after a task's COMPLETED status has been persisted.
	TaskCompleted = "task.completed"
)

// TaskEvent describes a change to a task that has already been written to
// the store.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   string            `json:"type"`
	TaskID string            `json:"taskId"`
	ItemID string            `json:"itemId"`
	Status domain.TaskStatus `json:"status"`

	// OccurredAt is when the change was persisted
	OccurredAt time.Time `json:"occurredAt"`
}

// NewTaskEvent creates an event of the given type for task.
func NewTaskEvent(eventType string, task domain.Task, now time.Time) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     task.ID,
		ItemID:     task.ItemID,
		Status:     task.Status,
		OccurredAt: now,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *TaskEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the scheduler to publish completions without knowing who listens.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
