package domain

import (
	"time"

	"github.com/rs/xid"
)

// Item is a named, priced entry in the catalog.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemInput carries the caller-supplied fields for creating or replacing an item.
// Price is a pointer so that a missing price can be told apart from zero.
type ItemInput struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
}

// NewItem validates the input and builds an item with a fresh id.
func NewItem(in ItemInput, now time.Time) (*Item, error) {
	if err := ValidateItemCreate(in); err != nil {
		return nil, err
	}

	return &Item{
		ID:          NewID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		CreatedAt:   now.UTC(),
	}, nil
}

// Apply replaces the mutable fields of the item. CreatedAt and ID are kept.
func (i *Item) Apply(in ItemInput) error {
	if err := ValidateItemCreate(in); err != nil {
		return err
	}

	i.Name = in.Name
	i.Description = in.Description
	i.Price = *in.Price
	return nil
}

// NewID returns a 20 character, lowercase alphanumeric identifier.
func NewID() string {
	return xid.New().String()
}
