package repository

import (
	"context"
	"errors"

	repo "inventory/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type txReposGorm struct {
	products  repo.ProductRepository
	suppliers repo.SupplierRepository
	inventory repo.InventoryRepository
	purchases repo.PurchaseRepository
	sales     repo.SaleRepository
	returns   repo.ReturnRepository
	sequences repo.SequenceAllocator
	alerts    repo.AlertRepository
}

func (r *txReposGorm) Products() repo.ProductRepository    { return r.products }
func (r *txReposGorm) Suppliers() repo.SupplierRepository  { return r.suppliers }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Purchases() repo.PurchaseRepository  { return r.purchases }
func (r *txReposGorm) Sales() repo.SaleRepository          { return r.sales }
func (r *txReposGorm) Returns() repo.ReturnRepository      { return r.returns }
func (r *txReposGorm) Sequences() repo.SequenceAllocator   { return r.sequences }
func (r *txReposGorm) Alerts() repo.AlertRepository        { return r.alerts }

type TxManagerGorm struct {
	db *gorm.DB

	// nilならcountersテーブル（Tx内）で採番
	sequences repo.SequenceAllocator
}

type TxOption func(*TxManagerGorm)

// 採番をTxの外（redisなど）に出すとき
func WithSequenceAllocator(s repo.SequenceAllocator) TxOption {
	return func(tm *TxManagerGorm) { tm.sequences = s }
}

func NewTxManagerGorm(db *gorm.DB, opts ...TxOption) *TxManagerGorm {
	tm := &TxManagerGorm{db: db}
	for _, o := range opts {
		o(tm)
	}
	return tm
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			products:  NewProductGormRepository(tx),
			suppliers: NewSupplierGormRepository(tx),
			inventory: NewInventoryGormRepository(tx),
			purchases: NewPurchaseGormRepository(tx),
			sales:     NewSaleGormRepository(tx),
			returns:   NewReturnGormRepository(tx),
			sequences: NewSequenceGormRepository(tx),
			alerts:    NewAlertGormRepository(tx),
		}
		if tm.sequences != nil {
			r.sequences = tm.sequences
		}
		if err := fn(r); err != nil {
			return err
		}
		//キャンセル済みならcommitしない
		return ctx.Err()
	})
	return translateTxError(err)
}

// シリアライズ失敗・デッドロック・ロック待ちはErrConflictにまとめる
func translateTxError(err error) error {
	if err == nil {
		return nil
	}
	if isRetryable(err) {
		return errors.Join(repo.ErrConflict, err)
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	return false
}
