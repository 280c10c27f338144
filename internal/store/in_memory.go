package store

import (
	"context"
	"sort"
	"sync"

	perrors "github.com/abgdnv/productcrud/internal/errors"
)

// InMemory implements ProductStore using an in-memory map.
// Identifiers come from a process-local counter guarded by the store mutex.
type InMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewInMemoryStore creates a new, empty in-memory ProductStore.
func NewInMemoryStore() *InMemory {
	return &InMemory{
		products: make(map[int64]Product),
		nextID:   1,
	}
}

// FindByID retrieves a product by its ID.
func (s *InMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products matching the filter, ordered by ID.
func (s *InMemory) FindAll(_ context.Context, filter Filter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Create creates a new product and returns it.
func (s *InMemory) Create(_ context.Context, name string, price float64, category string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:       s.nextID,
		Name:     name,
		Price:    price,
		Category: category,
	}
	s.nextID++
	s.products[product.ID] = product

	return &product, nil
}

// Update merges the patch into an existing product.
func (s *InMemory) Update(_ context.Context, id int64, patch Patch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	patch.Apply(&p)
	s.products[id] = p

	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *InMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// Ping always succeeds.
func (s *InMemory) Ping(_ context.Context) error {
	return nil
}
