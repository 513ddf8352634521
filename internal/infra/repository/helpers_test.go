package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"inventory/internal/domain/model"
	"inventory/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, gdb *gorm.DB, code string, stock, threshold int64) model.Product {
	t.Helper()
	p, err := NewProductGormRepository(gdb).Create(context.Background(), model.Product{
		Code:              code,
		Name:              "product " + code,
		Category:          "general",
		CostPrice:         decimal.NewFromInt(2),
		SellingPrice:      decimal.NewFromInt(5),
		Stock:             stock,
		LowStockThreshold: threshold,
		IsActive:          true,
	})
	require.NoError(t, err)
	return p
}

func seedSupplier(t *testing.T, gdb *gorm.DB) model.Supplier {
	t.Helper()
	s, err := NewSupplierGormRepository(gdb).Create(context.Background(), model.Supplier{
		Code:     "SUP-0001",
		Name:     "acme",
		Phone:    "000",
		IsActive: true,
	})
	require.NoError(t, err)
	return s
}

func stockOf(t *testing.T, gdb *gorm.DB, id int64) int64 {
	t.Helper()
	p, err := NewProductGormRepository(gdb).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
