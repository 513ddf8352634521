package usecase_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inventory/internal/config"
	"inventory/internal/domain/model"
	"inventory/internal/infra/db"
	infraRepo "inventory/internal/infra/repository"
	"inventory/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テストから進められる時計
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	db        *gorm.DB
	clock     *fakeClock
	catalog   *usecase.CatalogUsecase
	purchases *usecase.PurchaseUsecase
	sales     *usecase.SaleUsecase
	returns   *usecase.ReturnUsecase
	movements *usecase.MovementUsecase
	inventory *usecase.InventoryUsecase
	alerts    *usecase.AlertUsecase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "inventory.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := config.DiscardLogger()
	clock := &fakeClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	policy := usecase.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond}
	tm := infraRepo.NewTxManagerGorm(gdb)
	movements := usecase.NewMovementUsecase(infraRepo.NewMovementGormRepository(gdb))

	return &env{
		db:        gdb,
		clock:     clock,
		catalog:   usecase.NewCatalogUsecase(tm, clock, policy, log),
		purchases: usecase.NewPurchaseUsecase(tm, infraRepo.NewPurchaseGormRepository(gdb), clock, policy, log),
		sales:     usecase.NewSaleUsecase(tm, infraRepo.NewSaleGormRepository(gdb), clock, policy, log),
		returns:   usecase.NewReturnUsecase(tm, infraRepo.NewReturnGormRepository(gdb), clock, policy, log),
		movements: movements,
		inventory: usecase.NewInventoryUsecase(infraRepo.NewProductGormRepository(gdb), movements),
		alerts:    usecase.NewAlertUsecase(infraRepo.NewAlertGormRepository(gdb)),
	}
}

func (e *env) supplier(t *testing.T) model.Supplier {
	t.Helper()
	s, err := e.catalog.CreateSupplier(context.Background(), usecase.CreateSupplierInput{Name: "acme", Phone: "0123"})
	require.NoError(t, err)
	return s
}

func (e *env) product(t *testing.T, name string, stock, threshold int64) model.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), usecase.CreateProductInput{
		Name:              name,
		Category:          "stationery",
		CostPrice:         decimal.NewFromInt(2),
		SellingPrice:      decimal.NewFromInt(5),
		InitialStock:      stock,
		LowStockThreshold: threshold,
	})
	require.NoError(t, err)
	return p
}

func (e *env) stock(t *testing.T, id int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, id).Error)
	return p.Stock
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func ptr[T any](v T) *T { return &v }

func requireAppError(t *testing.T, err error, kind usecase.ErrorKind, code string) *usecase.AppError {
	t.Helper()
	require.Error(t, err)
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok, "not an AppError: %v", err)
	require.Equal(t, kind, ae.Kind, ae.Message)
	require.Equal(t, code, ae.Code, ae.Message)
	return ae
}
