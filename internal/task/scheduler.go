package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/events"
	"github.com/strefethen/crud-example/internal/store"
)

// ErrSchedulerStopped is returned when scheduling after Stop.
var ErrSchedulerStopped = errors.New("task scheduler is stopped")

// errAlreadyCompleted aborts a completion write that would change nothing.
var errAlreadyCompleted = errors.New("task already completed")

// DocumentStore is the part of store.DocumentStore the scheduler needs.
type DocumentStore interface {
	Update(ctx context.Context, fn func(doc *store.Document) error) error
	View(ctx context.Context, fn func(doc *store.Document) error) error
}

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	// DefaultDelay is used for recovered tasks whose action has no positive amount.
	DefaultDelay time.Duration

	// WriteTimeout bounds each completion write.
	// If zero, defaults to 10 seconds
	WriteTimeout time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DefaultDelay: 15 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Scheduler completes tasks after their delay elapses. Timers hold only the
// task id; the task is looked up again in the store when the timer fires.
type Scheduler struct {
	store   DocumentStore
	emitter events.EventEmitter
	config  SchedulerConfig
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler. emitter may be nil.
func NewScheduler(
	store DocumentStore,
	config SchedulerConfig,
	logger *slog.Logger,
	emitter events.EventEmitter,
) *Scheduler {
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		store:   store,
		emitter: emitter,
		config:  config,
		logger:  logger.With("component", "task_scheduler"),
		now:     func() time.Time { return time.Now().UTC() },
		timers:  make(map[string]*time.Timer),
	}
}

// ScheduleCompletion arms a one-shot timer that completes the task after
// delay. Scheduling an id that is already armed does nothing.
func (s *Scheduler) ScheduleCompletion(taskID string, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if _, armed := s.timers[taskID]; armed {
		return nil
	}

	s.wg.Add(1)
	s.timers[taskID] = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.fire(taskID)
	})

	s.logger.Debug("scheduled task completion",
		"task_id", taskID,
		"delay_ms", delay.Milliseconds())
	return nil
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Recover arms a timer for every PENDING task in the store. The remaining
// delay is measured from the task's creation time, so tasks that are already
// overdue complete immediately. It returns the number of tasks armed.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	var pending []domain.Task
	err := s.store.View(ctx, func(doc *store.Document) error {
		pending = doc.PendingTasks()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get pending tasks: %w", err)
	}

	now := s.now()
	armed := 0
	for _, t := range pending {
		due := t.CreatedAt.Add(t.Action.Delay(s.config.DefaultDelay))
		remaining := due.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		if err := s.ScheduleCompletion(t.ID, remaining); err != nil {
			return armed, err
		}
		armed++
	}

	s.logger.Info("recovered pending tasks", "pending_count", len(pending), "armed_count", armed)
	return armed, nil
}

// Stop disarms all timers and waits for completions already running.
// Tasks left PENDING are picked up by Recover on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true

	disarmed := 0
	for id, timer := range s.timers {
		if timer.Stop() {
			// The callback will never run, so release its wait slot here.
			s.wg.Done()
			disarmed++
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("task scheduler stopped", "disarmed_count", disarmed)
}

func (s *Scheduler) fire(taskID string) {
	s.mu.Lock()
	delete(s.timers, taskID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
	defer cancel()

	if err := s.complete(ctx, taskID); err != nil {
		s.logger.Error("failed to complete task",
			"task_id", taskID,
			"error", err)
	}
}

// complete persists the COMPLETED status and then emits the event.
func (s *Scheduler) complete(ctx context.Context, taskID string) error {
	var completed domain.Task
	err := s.store.Update(ctx, func(doc *store.Document) error {
		t, err := doc.Task(taskID)
		if err != nil {
			return err
		}
		if !t.Complete(s.now()) {
			return errAlreadyCompleted
		}
		completed = *t
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn("task no longer exists, dropping completion", "task_id", taskID)
		return nil
	case errors.Is(err, errAlreadyCompleted):
		s.logger.Debug("task already completed", "task_id", taskID)
		return nil
	case err != nil:
		return err
	}

	s.logger.Info("task completed",
		"task_id", completed.ID,
		"item_id", completed.ItemID,
		"kind", completed.Action.Kind)

	if s.emitter != nil {
		event := events.NewTaskEvent(events.TaskCompleted, completed, s.now())
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("failed to emit task event",
				"task_id", completed.ID,
				"error", err)
		}
	}
	return nil
}
