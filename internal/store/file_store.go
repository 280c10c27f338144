package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/sequence"
)

// FileStore implements ProductStore on a single JSON file holding an array of products.
//
// Every operation reads the whole table and mutating operations write it back
// in full. The read-modify-write cycle runs under one mutex, and writes go to a
// temporary file that is renamed over the table so readers never see a partial file.
type FileStore struct {
	mu   sync.Mutex
	path string
	seq  sequence.Sequence
}

// NewFileStore creates a FileStore backed by path. A missing file is treated as an empty table.
// When seq is nil, identifiers come from a high-water mark kept next to the table in
// <path>.seq, so an identifier is never handed out twice even after deletes.
func NewFileStore(path string, seq sequence.Sequence) *FileStore {
	return &FileStore{
		path: path,
		seq:  seq,
	}
}

// FindByID retrieves a product by its ID.
func (s *FileStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	return &products[i], nil
}

// FindAll retrieves all products matching the filter, ordered by ID.
func (s *FileStore) FindAll(_ context.Context, filter Filter) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	list := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Create appends a new product to the table.
func (s *FileStore) Create(ctx context.Context, name string, price float64, category string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	id, err := s.nextID(ctx, products)
	if err != nil {
		return nil, err
	}
	product := Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Category: category,
	}
	if err := s.save(append(products, product)); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update merges the patch into an existing product.
func (s *FileStore) Update(_ context.Context, id int64, patch Patch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	patch.Apply(&products[i])
	if err := s.save(products); err != nil {
		return nil, err
	}
	updated := products[i]
	return &updated, nil
}

// DeleteByID removes a product from the table.
func (s *FileStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(products, id)
	if i < 0 {
		return perrors.ErrProductNotFound
	}
	return s.save(append(products[:i], products[i+1:]...))
}

// Ping checks that the table is readable.
func (s *FileStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.load()
	return err
}

// nextID must be called with mu held.
func (s *FileStore) nextID(ctx context.Context, products []Product) (int64, error) {
	if s.seq != nil {
		id, err := s.seq.Next(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to assign product ID: %w", err)
		}
		return id, nil
	}
	last, err := s.loadMark()
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		last = max(last, p.ID)
	}
	id := last + 1
	// the mark is written before the table; a failed table write leaves a gap, never a reuse
	if err := writeFileAtomic(s.markPath(), []byte(strconv.FormatInt(id, 10)+"\n")); err != nil {
		return 0, fmt.Errorf("failed to save product ID mark: %w", err)
	}
	return id, nil
}

func (s *FileStore) markPath() string {
	return s.path + ".seq"
}

// loadMark returns the last issued identifier, 0 when none was recorded.
func (s *FileStore) loadMark() (int64, error) {
	data, err := os.ReadFile(s.markPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read product ID mark: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	last, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to decode product ID mark %s: %w", s.markPath(), err)
	}
	return last, nil
}

// load must be called with mu held.
func (s *FileStore) load() ([]Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Product{}, nil
		}
		return nil, fmt.Errorf("failed to read product table: %w", err)
	}
	if len(data) == 0 {
		return []Product{}, nil
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode product table %s: %w", s.path, err)
	}
	return products, nil
}

// save must be called with mu held.
func (s *FileStore) save(products []Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode product table: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to replace product table: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}

func indexOf(products []Product, id int64) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
