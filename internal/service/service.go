// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/store"
	"github.com/abgdnv/productcrud/pkg/messaging"
	"github.com/abgdnv/productcrud/pkg/messaging/events"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Add validates a product record, assigns its identifier and stores it.
	Add(ctx context.Context, data Payload) (*ProductDto, error)

	// Update merges the fields present in data into an existing product.
	// Returns a NotFoundError if no product exists with the given ID.
	Update(ctx context.Context, id int64, data Payload) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns a NotFoundError if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// FindByID retrieves a single product by its unique identifier.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all products. An empty catalog is an EmptyResultError.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByCategory returns products whose category equals category exactly.
	// No match is an EmptyResultError naming the category.
	FindByCategory(ctx context.Context, category string) ([]ProductDto, error)
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository.
// publisher may be nil, in which case no events are sent.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
	}
}

// Add validates data before touching the store, so rejected records never consume an identifier.
func (s *Service) Add(ctx context.Context, data Payload) (*ProductDto, error) {
	name, price, category, err := productFields(data)
	if err != nil {
		return nil, err
	}

	p, err := s.repository.Create(ctx, name, price, category)
	if err != nil {
		return nil, storageError("create", err)
	}

	s.publish(ctx, events.ProductCreatedEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Category:   p.Category,
		OccurredAt: time.Now().UTC(),
	})
	return toDto(p), nil
}

func (s *Service) Update(ctx context.Context, id int64, data Payload) (*ProductDto, error) {
	patch, err := ValidatePatch(data)
	if err != nil {
		return nil, err
	}

	p, err := s.repository.Update(ctx, id, patch)
	if err != nil {
		return nil, lookupError(id, "update", err)
	}

	s.publish(ctx, events.ProductUpdatedEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Category:   p.Category,
		OccurredAt: time.Now().UTC(),
	})
	return toDto(p), nil
}

func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return lookupError(id, "delete", err)
	}

	s.publish(ctx, events.ProductDeletedEvent{
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(id, "find", err)
	}
	return toDto(p), nil
}

func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, store.Filter{})
	if err != nil {
		return nil, storageError("list", err)
	}
	if len(products) == 0 {
		return nil, &perrors.EmptyResultError{}
	}
	return toDtos(products), nil
}

func (s *Service) FindByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	if category == "" {
		return nil, &perrors.ValidationError{Field: "category", Message: MsgCategoryFilter}
	}

	products, err := s.repository.FindAll(ctx, store.Filter{Category: category})
	if err != nil {
		return nil, storageError("list", err)
	}
	if len(products) == 0 {
		return nil, &perrors.EmptyResultError{Category: category}
	}
	return toDtos(products), nil
}

// publish sends event if a publisher is configured. Failures are logged and never returned.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "subject", event.Subject(), "error", err)
	}
}

// lookupError maps a store miss to a NotFoundError and anything else to a StorageError.
func lookupError(id int64, op string, err error) error {
	if errors.Is(err, perrors.ErrProductNotFound) {
		return &perrors.NotFoundError{ID: id}
	}
	return storageError(op, err)
}

func storageError(op string, err error) error {
	return &perrors.StorageError{Op: op, Err: err}
}

// toDto converts a store.Product to a ProductDto.
func toDto(p *store.Product) *ProductDto {
	return &ProductDto{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
