package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// 明細を読むときの絞り込み。日付はヘッダの日付で比較する。
type MovementQuery struct {
	ProductID *int64
	From      *time.Time
	To        *time.Time
}

// 明細1行分（符号はまだ付けない）
type MovementRow struct {
	LineID        int64
	Code          string
	ProductID     int64
	ProductName   string
	Quantity      int64
	Date          time.Time           `gorm:"column:moved_at"`
	ReferenceType model.ReferenceType // returnのみ
	Restock       bool                // returnのみ
}

// 在庫移動の元データ（確定済みpurchase/sale/returnの明細）を読む。
type MovementReader interface {
	PurchaseLines(ctx context.Context, q MovementQuery) ([]MovementRow, error)
	SaleLines(ctx context.Context, q MovementQuery) ([]MovementRow, error)
	ReturnLines(ctx context.Context, q MovementQuery) ([]MovementRow, error)
}
