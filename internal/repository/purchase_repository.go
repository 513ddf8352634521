package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// 仕入一覧の絞り込み。日付はpurchase_date。
type PurchaseFilter struct {
	Status     *model.PurchaseStatus
	SupplierID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type PurchaseRepository interface {
	// ヘッダと明細をまとめて作成
	Create(ctx context.Context, p model.Purchase) (model.Purchase, error)

	// 明細付きで取得
	FindByID(ctx context.Context, id int64) (model.Purchase, error)

	// 明細付きで取得し、ヘッダ行をロックする（返品の直列化用）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Purchase, error)

	// draft -> confirmed。draftでなければErrAlreadyConfirmed。
	Confirm(ctx context.Context, id int64) error

	// 新しい順。総件数も返す。
	List(ctx context.Context, f PurchaseFilter) ([]model.Purchase, int64, error)

	LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error)
}
