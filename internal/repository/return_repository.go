package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// 返品一覧の絞り込み。ProductIDはその商品を含む返品だけ。
type ReturnFilter struct {
	ReferenceType *model.ReferenceType
	ProductID     *int64
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type ReturnRepository interface {
	Create(ctx context.Context, r model.Return) (model.Return, error)
	FindByID(ctx context.Context, id int64) (model.Return, error)
	ListByReference(ctx context.Context, ref model.Reference) ([]model.Return, error)
	List(ctx context.Context, f ReturnFilter) ([]model.Return, int64, error)
	LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error)

	// 返品元ごとに、これまでに返品された数量を商品IDごとに合計する
	ReturnedQuantities(ctx context.Context, ref model.Reference) (map[int64]int64, error)
}
