package repository

import (
	"context"
	"errors"
	"testing"

	repo "inventory/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryAdjust(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	inv := NewInventoryGormRepository(gdb)
	p := seedProduct(t, gdb, "PRD-0001", 5, 1)

	t.Run("increase", func(t *testing.T) {
		n, err := inv.Adjust(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(8), n)
	})

	t.Run("decrease to zero", func(t *testing.T) {
		n, err := inv.Adjust(ctx, p.ID, -8)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("would go negative", func(t *testing.T) {
		n, err := inv.Adjust(ctx, p.ID, -1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repo.ErrWouldGoNegative))

		var short *repo.StockShortageError
		require.True(t, errors.As(err, &short))
		assert.Equal(t, p.ID, short.ProductID)
		assert.Equal(t, int64(0), short.Available)
		assert.Equal(t, int64(1), short.Requested)
		assert.Equal(t, int64(0), n)

		assert.Equal(t, int64(0), stockOf(t, gdb, p.ID))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := inv.Adjust(ctx, 9999, 1)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})
}

func TestInventoryAdjust_SoftDeletedProductIsNotFound(t *testing.T) {
	gdb := newTestDB(t)
	p := seedProduct(t, gdb, "PRD-0001", 5, 1)
	require.NoError(t, gdb.Delete(&p).Error)

	_, err := NewInventoryGormRepository(gdb).Adjust(context.Background(), p.ID, 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
