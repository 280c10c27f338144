// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product is the stored representation of a product.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Patch holds a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Price    *float64
	Category *string
}

// IsEmpty reports whether the patch sets no field at all.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil
}

// Apply merges the patch into the product.
func (p Patch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
}

// Filter narrows FindAll. The zero value matches every product.
type Filter struct {
	Category string
}

// Matches reports whether the product passes the filter.
func (f Filter) Matches(p Product) bool {
	return f.Category == "" || p.Category == f.Category
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, file, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products matching the filter, ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, filter Filter) ([]Product, error)

	// Create adds a new product and assigns its identifier.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, name string, price float64, category string) (*Product, error)

	// Update merges the patch into an existing product and returns the result.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, patch Patch) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
