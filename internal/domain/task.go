package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values. A task only ever moves from pending to completed.
const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// TaskKind identifies one of the asynchronous operations a caller can queue
// against an item.
type TaskKind string

// The closed set of task kinds.
const (
	TaskKindWait  TaskKind = "WAIT"
	TaskKindHold  TaskKind = "HOLD"
	TaskKindPause TaskKind = "PAUSE"
	TaskKindDelay TaskKind = "DELAY"
)

// Names of the kind-specific delay parameters as they appear on the wire.
const (
	ParamLength   = "length"
	ParamDuration = "duration"
	ParamSeconds  = "seconds"
)

var taskKinds = []TaskKind{TaskKindWait, TaskKindHold, TaskKindPause, TaskKindDelay}

// TaskKinds returns the recognised kinds in their canonical order.
func TaskKinds() []TaskKind {
	kinds := make([]TaskKind, len(taskKinds))
	copy(kinds, taskKinds)
	return kinds
}

// Valid reports whether k is one of the recognised kinds.
func (k TaskKind) Valid() bool {
	for _, known := range taskKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Param returns the name of the parameter that carries the delay for k.
func (k TaskKind) Param() string {
	switch k {
	case TaskKindWait:
		return ParamLength
	case TaskKindHold:
		return ParamDuration
	case TaskKindPause, TaskKindDelay:
		return ParamSeconds
	default:
		return ""
	}
}

func validKindList() string {
	kinds := TaskKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// TaskAction is the kind of a task together with its single parameter.
// Amount is always expressed in milliseconds, whatever the parameter is called.
type TaskAction struct {
	Kind   TaskKind
	Amount float64
}

// Delay converts Amount to a duration. Non-positive amounts fall back to def.
func (a TaskAction) Delay(def time.Duration) time.Duration {
	if a.Amount <= 0 {
		return def
	}
	ns := a.Amount * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Task is a delayed operation queued against an item.
type Task struct {
	ID          string
	ItemID      string
	Status      TaskStatus
	Action      TaskAction
	MonitorURL  string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Complete moves a pending task to completed. It reports false when the task
// was already completed and nothing changed.
func (t *Task) Complete(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	completed := now.UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completed
	return true
}

// taskJSON is the wire and storage shape of a Task. Only the parameter that
// belongs to the task kind is ever populated.
type taskJSON struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"itemId"`
	Status      TaskStatus `json:"status"`
	Kind        TaskKind   `json:"kind"`
	Length      *float64   `json:"length,omitempty"`
	Duration    *float64   `json:"duration,omitempty"`
	Seconds     *float64   `json:"seconds,omitempty"`
	MonitorURL  string     `json:"monitorUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MarshalJSON writes the action's amount under the kind's parameter name.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		ItemID:      t.ItemID,
		Status:      t.Status,
		Kind:        t.Action.Kind,
		MonitorURL:  t.MonitorURL,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}

	amount := t.Action.Amount
	switch t.Action.Kind.Param() {
	case ParamLength:
		out.Length = &amount
	case ParamDuration:
		out.Duration = &amount
	case ParamSeconds:
		out.Seconds = &amount
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads the amount from the parameter matching the stored kind.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var amount *float64
	switch in.Kind.Param() {
	case ParamLength:
		amount = in.Length
	case ParamDuration:
		amount = in.Duration
	case ParamSeconds:
		amount = in.Seconds
	}

	*t = Task{
		ID:          in.ID,
		ItemID:      in.ItemID,
		Status:      in.Status,
		Action:      TaskAction{Kind: in.Kind},
		MonitorURL:  in.MonitorURL,
		CreatedAt:   in.CreatedAt,
		CompletedAt: in.CompletedAt,
	}
	if amount != nil {
		t.Action.Amount = *amount
	}
	return nil
}

// TaskRequest is the loosely shaped body callers send to create a task.
// ValidateTaskCreate turns it into a TaskAction.
type TaskRequest struct {
	Kind     string   `json:"kind"`
	Length   *float64 `json:"length,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Seconds  *float64 `json:"seconds,omitempty"`
}

func (r TaskRequest) param(name string) *float64 {
	switch name {
	case ParamLength:
		return r.Length
	case ParamDuration:
		return r.Duration
	case ParamSeconds:
		return r.Seconds
	default:
		return nil
	}
}

// ValidateTaskCreate checks a task request and returns the action it describes.
// Item existence is not checked here.
func ValidateTaskCreate(req TaskRequest) (TaskAction, error) {
	if req.Kind == "" {
		return TaskAction{}, NewValidationError("kind",
			"Invalid request. No task kind specified. Valid kinds: "+validKindList())
	}

	kind := TaskKind(req.Kind)
	if !kind.Valid() {
		return TaskAction{}, NewValidationError("kind",
			fmt.Sprintf("Invalid request. Task kind %s not supported. Valid kinds: %s", req.Kind, validKindList()))
	}

	if req.Length == nil && req.Duration == nil && req.Seconds == nil {
		return TaskAction{}, NewValidationError("params",
			fmt.Sprintf("Invalid request. One of %s, %s or %s is required", ParamLength, ParamDuration, ParamSeconds))
	}

	amount := req.param(kind.Param())
	if amount == nil {
		return TaskAction{}, NewValidationError(kind.Param(),
			fmt.Sprintf("Invalid request. Task kind %s requires %s", kind, kind.Param()))
	}

	return TaskAction{Kind: kind, Amount: *amount}, nil
}
