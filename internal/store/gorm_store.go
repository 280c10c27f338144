package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"gorm.io/gorm"
)

// productRecord is the row mapping of the products table.
type productRecord struct {
	ID       int64   `gorm:"primaryKey;autoIncrement"`
	Name     string  `gorm:"type:varchar(100);not null"`
	Price    float64 `gorm:"not null"`
	Category string  `gorm:"type:varchar(100);not null;index"`
}

func (productRecord) TableName() string { return "products" }

func (r productRecord) toProduct() Product {
	return Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Category: r.Category,
	}
}

// GormStore implements ProductStore on a relational database through GORM.
// Identifiers come from the table's auto-increment column.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new instance of ProductStore on an open GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *GormStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	var rec productRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	p := rec.toProduct()
	return &p, nil
}

// FindAll retrieves products matching the filter, ordered by ID.
func (s *GormStore) FindAll(ctx context.Context, filter Filter) ([]Product, error) {
	q := s.db.WithContext(ctx).Order("id")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var recs []productRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products := make([]Product, 0, len(recs))
	for _, r := range recs {
		products = append(products, r.toProduct())
	}
	return products, nil
}

// Create inserts a new row and returns it with the generated ID.
func (s *GormStore) Create(ctx context.Context, name string, price float64, category string) (*Product, error) {
	rec := productRecord{
		Name:     name,
		Price:    price,
		Category: category,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p := rec.toProduct()
	return &p, nil
}

// Update sets the patched columns and returns the stored row.
// Returns ErrProductNotFound if no row has the given ID.
func (s *GormStore) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	columns := make(map[string]any, 3)
	if patch.Name != nil {
		columns["name"] = *patch.Name
	}
	if patch.Price != nil {
		columns["price"] = *patch.Price
	}
	if patch.Category != nil {
		columns["category"] = *patch.Category
	}
	if len(columns) == 0 {
		return s.FindByID(ctx, id)
	}

	res := s.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, perrors.ErrProductNotFound
	}
	return s.FindByID(ctx, id)
}

// DeleteByID removes a row by its ID.
// Returns ErrProductNotFound if no row has the given ID.
func (s *GormStore) DeleteByID(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&productRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product by ID: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks the underlying connection pool.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
