package store

import (
	"context"
	"sync"
	"testing"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestInMemory_CreateAssignsIncreasingIDs(t *testing.T) {
	// given
	s := NewInMemoryStore()
	ctx := context.Background()

	// when
	pen, err := s.Create(ctx, "Pen", 1.5, "Stationery")
	require.NoError(t, err)
	book, err := s.Create(ctx, "Book", 9.99, "Media")
	require.NoError(t, err)

	// then
	assert.Equal(t, int64(1), pen.ID)
	assert.Equal(t, int64(2), book.ID)

	all, err := s.FindAll(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []Product{*pen, *book}, all)
}

func TestInMemory_FindAllByCategory(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, _ = s.Create(ctx, "Pen", 1.5, "Stationery")
	book, _ := s.Create(ctx, "Book", 9.99, "Media")

	media, err := s.FindAll(ctx, Filter{Category: "Media"})
	require.NoError(t, err)
	assert.Equal(t, []Product{*book}, media)

	none, err := s.FindAll(ctx, Filter{Category: "Toys"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemory_UpdateMergesPatch(t *testing.T) {
	// given
	s := NewInMemoryStore()
	ctx := context.Background()
	created, _ := s.Create(ctx, "Pen", 1.5, "Stationery")

	// when
	updated, err := s.Update(ctx, created.ID, Patch{Price: ptr(2.25)})

	// then
	require.NoError(t, err)
	assert.Equal(t, Product{ID: created.ID, Name: "Pen", Price: 2.25, Category: "Stationery"}, *updated)

	fetched, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *fetched)
}

func TestInMemory_MissingID(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, err := s.FindByID(ctx, 42)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	_, err = s.Update(ctx, 42, Patch{Name: ptr("x")})
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	err = s.DeleteByID(ctx, 42)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	all, _ := s.FindAll(ctx, Filter{})
	assert.Empty(t, all, "update on a missing id must not create a record")
}

func TestInMemory_Delete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	pen, _ := s.Create(ctx, "Pen", 1.5, "Stationery")
	book, _ := s.Create(ctx, "Book", 9.99, "Media")

	require.NoError(t, s.DeleteByID(ctx, pen.ID))

	all, err := s.FindAll(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []Product{*book}, all)
}

func TestInMemory_ConcurrentCreateIDsAreUnique(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	const n = 50

	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Create(ctx, "Pen", 1, "Stationery")
			if err == nil {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "id %d issued twice", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}
