package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/store"
)

// DocumentStore is the part of store.DocumentStore the services need.
type DocumentStore interface {
	Update(ctx context.Context, fn func(doc *store.Document) error) error
	View(ctx context.Context, fn func(doc *store.Document) error) error
}

// ItemService provides item-related operations
type ItemService interface {
	// ListItems returns the items in insertion order, windowed by page.
	ListItems(ctx context.Context, page domain.Page) ([]domain.Item, error)

	// CountItems returns the number of stored items.
	CountItems(ctx context.Context) (int, error)

	// GetItem returns the item with the given id.
	GetItem(ctx context.Context, id string) (*domain.Item, error)

	// CreateItem validates the input and stores a new item.
	CreateItem(ctx context.Context, in domain.ItemInput) (*domain.Item, error)

	// UpdateItem replaces name, description and price of an existing item.
	UpdateItem(ctx context.Context, id string, in domain.ItemInput) (*domain.Item, error)

	// DeleteItem removes an item. Its tasks are kept.
	DeleteItem(ctx context.Context, id string) error
}

type itemServiceImpl struct {
	store  DocumentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewItemService creates a new ItemService
func NewItemService(store DocumentStore, logger *slog.Logger) (ItemService, error) {
	if store == nil {
		return nil, &ServiceError{
			Service:   "item",
			Operation: "create_service",
			Message:   "store cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &itemServiceImpl{
		store:  store,
		logger: logger.With("component", "item_service"),
		now:    time.Now,
	}, nil
}

func (s *itemServiceImpl) ListItems(ctx context.Context, page domain.Page) ([]domain.Item, error) {
	var items []domain.Item
	err := s.store.View(ctx, func(doc *store.Document) error {
		start, end := page.Bounds(len(doc.Items))
		items = doc.Items[start:end]
		return nil
	})
	if err != nil {
		return nil, wrapError("item", "list_items", "failed to read items", err)
	}
	return items, nil
}

func (s *itemServiceImpl) CountItems(ctx context.Context) (int, error) {
	var count int
	err := s.store.View(ctx, func(doc *store.Document) error {
		count = len(doc.Items)
		return nil
	})
	if err != nil {
		return 0, wrapError("item", "count_items", "failed to read items", err)
	}
	return count, nil
}

func (s *itemServiceImpl) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	err := s.store.View(ctx, func(doc *store.Document) error {
		found, err := doc.Item(id)
		if err != nil {
			return err
		}
		item = *found
		return nil
	})
	if err != nil {
		return nil, wrapError("item", "get_item", "failed to read item", err)
	}
	return &item, nil
}

func (s *itemServiceImpl) CreateItem(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	item, err := domain.NewItem(in, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, func(doc *store.Document) error {
		for doc.HasItemID(item.ID) {
			item.ID = domain.NewID()
		}
		doc.AddItem(*item)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create item", "error", err)
		return nil, wrapError("item", "create_item", "failed to save item", err)
	}

	s.logger.Info("item created", "item_id", item.ID)
	return item, nil
}

func (s *itemServiceImpl) UpdateItem(ctx context.Context, id string, in domain.ItemInput) (*domain.Item, error) {
	var updated domain.Item
	err := s.store.Update(ctx, func(doc *store.Document) error {
		item, err := doc.Item(id)
		if err != nil {
			return err
		}
		if err := item.Apply(in); err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		return nil, wrapError("item", "update_item", "failed to save item", err)
	}

	s.logger.Info("item updated", "item_id", id)
	return &updated, nil
}

func (s *itemServiceImpl) DeleteItem(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(doc *store.Document) error {
		return doc.DeleteItem(id)
	})
	if err != nil {
		return wrapError("item", "delete_item", "failed to delete item", err)
	}

	s.logger.Info("item deleted", "item_id", id)
	return nil
}
