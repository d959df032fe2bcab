package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/store"
)

// Scheduler arms the deferred completion of a task.
type Scheduler interface {
	ScheduleCompletion(taskID string, delay time.Duration) error
}

// Origin is the scheme and host the caller reached the service on. It is
// used to build absolute monitor URLs.
type Origin struct {
	Scheme string
	Host   string
}

// TaskServiceConfig holds the settings the task service reads.
type TaskServiceConfig struct {
	// DefaultDelay applies when a task carries no positive amount.
	DefaultDelay time.Duration
	// Collection is the path segment used in monitor URLs.
	Collection string
}

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask queues a task against an existing item and arms its completion.
	// The returned task is always PENDING.
	CreateTask(ctx context.Context, itemID string, req domain.TaskRequest, origin Origin) (*domain.Task, error)

	// GetTask returns the current state of a task.
	GetTask(ctx context.Context, id string) (*domain.Task, error)
}

type taskServiceImpl struct {
	store     DocumentStore
	scheduler Scheduler
	config    TaskServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	store DocumentStore,
	scheduler Scheduler,
	config TaskServiceConfig,
	logger *slog.Logger,
) (TaskService, error) {
	if store == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "store cannot be nil"}
	}
	if scheduler == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "scheduler cannot be nil"}
	}
	if config.Collection == "" {
		config.Collection = "items"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:     store,
		scheduler: scheduler,
		config:    config,
		logger:    logger.With("component", "task_service"),
		now:       time.Now,
	}, nil
}

// MonitorURL builds the status URL for a task.
func MonitorURL(origin Origin, collection, taskID string) string {
	u := url.URL{
		Scheme: origin.Scheme,
		Host:   origin.Host,
		Path:   fmt.Sprintf("/services/tasks/%s/%s/status", collection, taskID),
	}
	return u.String()
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	itemID string,
	req domain.TaskRequest,
	origin Origin,
) (*domain.Task, error) {
	var created domain.Task
	err := s.store.Update(ctx, func(doc *store.Document) error {
		// Item existence is checked before the request body.
		if _, err := doc.Item(itemID); err != nil {
			return err
		}

		action, err := domain.ValidateTaskCreate(req)
		if err != nil {
			return err
		}

		id := domain.NewID()
		for doc.HasTaskID(id) {
			id = domain.NewID()
		}

		created = domain.Task{
			ID:         id,
			ItemID:     itemID,
			Status:     domain.TaskStatusPending,
			Action:     action,
			MonitorURL: MonitorURL(origin, s.config.Collection, id),
			CreatedAt:  s.now().UTC(),
		}
		doc.AddTask(created)
		return nil
	})
	if err != nil {
		return nil, wrapError("task", "create_task", "failed to save task", err)
	}

	// The task is committed at this point; a scheduling failure leaves it
	// PENDING until the next Recover.
	delay := created.Action.Delay(s.config.DefaultDelay)
	if err := s.scheduler.ScheduleCompletion(created.ID, delay); err != nil {
		s.logger.Error("failed to schedule task completion",
			"task_id", created.ID,
			"item_id", itemID,
			"error", err)
	}

	s.logger.Info("task created",
		"task_id", created.ID,
		"item_id", itemID,
		"kind", created.Action.Kind,
		"delay_ms", delay.Milliseconds())
	return &created, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := s.store.View(ctx, func(doc *store.Document) error {
		found, err := doc.Task(id)
		if err != nil {
			return err
		}
		task = *found
		return nil
	})
	if err != nil {
		return nil, wrapError("task", "get_task", "failed to read task", err)
	}
	return &task, nil
}
