package mocks

import (
	"context"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	CreateTaskFn func(ctx context.Context, itemID string, req domain.TaskRequest, origin service.Origin) (*domain.Task, error)
	GetTaskFn    func(ctx context.Context, id string) (*domain.Task, error)

	// Default return values
	Task         *domain.Task
	DefaultError error
}

// CreateTask implements the TaskService.CreateTask method
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	itemID string,
	req domain.TaskRequest,
	origin service.Origin,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, itemID, req, origin)
	}
	return m.Task, m.DefaultError
}

// GetTask implements the TaskService.GetTask method
func (m *MockTaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return m.Task, m.DefaultError
}
