package mocks

import (
	"context"

	"github.com/strefethen/crud-example/internal/domain"
)

// MockItemService implements service.ItemService for testing
type MockItemService struct {
	ListItemsFn  func(ctx context.Context, page domain.Page) ([]domain.Item, error)
	CountItemsFn func(ctx context.Context) (int, error)
	GetItemFn    func(ctx context.Context, id string) (*domain.Item, error)
	CreateItemFn func(ctx context.Context, in domain.ItemInput) (*domain.Item, error)
	UpdateItemFn func(ctx context.Context, id string, in domain.ItemInput) (*domain.Item, error)
	DeleteItemFn func(ctx context.Context, id string) error

	// Default return values
	Items        []domain.Item
	Item         *domain.Item
	Count        int
	DefaultError error
}

// ListItems implements the ItemService.ListItems method
func (m *MockItemService) ListItems(ctx context.Context, page domain.Page) ([]domain.Item, error) {
	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, page)
	}
	return m.Items, m.DefaultError
}

// CountItems implements the ItemService.CountItems method
func (m *MockItemService) CountItems(ctx context.Context) (int, error) {
	if m.CountItemsFn != nil {
		return m.CountItemsFn(ctx)
	}
	return m.Count, m.DefaultError
}

// GetItem implements the ItemService.GetItem method
func (m *MockItemService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, id)
	}
	return m.Item, m.DefaultError
}

// CreateItem implements the ItemService.CreateItem method
func (m *MockItemService) CreateItem(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	if m.CreateItemFn != nil {
		return m.CreateItemFn(ctx, in)
	}
	return m.Item, m.DefaultError
}

// UpdateItem implements the ItemService.UpdateItem method
func (m *MockItemService) UpdateItem(ctx context.Context, id string, in domain.ItemInput) (*domain.Item, error) {
	if m.UpdateItemFn != nil {
		return m.UpdateItemFn(ctx, id, in)
	}
	return m.Item, m.DefaultError
}

// DeleteItem implements the ItemService.DeleteItem method
func (m *MockItemService) DeleteItem(ctx context.Context, id string) error {
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, id)
	}
	return m.DefaultError
}
