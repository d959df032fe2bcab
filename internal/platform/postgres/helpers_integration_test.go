//go:build integration

package postgres_test

import (
	"time"

	"github.com/strefethen/crud-example/internal/domain"
)

func sampleItem() domain.Item {
	return domain.Item{
		ID:          domain.NewID(),
		Name:        "Widget",
		Description: "A widget",
		Price:       1.5,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}
