package repository

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// 在庫がマイナスになる
	ErrWouldGoNegative = errors.New("stock would go negative")

	// 競合（シリアライズ失敗・デッドロック・ロック待ち）。リトライしてよい。
	ErrConflict = errors.New("transaction conflict")

	ErrAlreadyConfirmed = errors.New("already confirmed")
)

// 在庫不足の詳細
type StockShortageError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *StockShortageError) Unwrap() error { return ErrWouldGoNegative }

// 在庫を変える唯一の窓口。
type InventoryRepository interface {
	// deltaを加算して新しい在庫数を返す。
	// 商品がなければErrNotFound、マイナスになるならStockShortageError。
	Adjust(ctx context.Context, productID int64, delta int64) (int64, error)
}
