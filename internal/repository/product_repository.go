package repository

import (
	"context"

	"inventory/internal/domain/model"
)

// 在庫一覧の絞り込み
type InventoryListQuery struct {
	Page       int
	Limit      int
	Category   string
	LowStock   bool
	OutOfStock bool
}

// 在庫サマリ
type InventoryOverview struct {
	TotalProducts   int64 `json:"total_products"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

// 商品の保存・取得。stockの更新はInventoryRepositoryが行う。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)

	ListInventory(ctx context.Context, q InventoryListQuery) ([]model.Product, int64, error)
	Overview(ctx context.Context) (InventoryOverview, error)
}

type SupplierRepository interface {
	FindByID(ctx context.Context, id int64) (model.Supplier, error)
	Create(ctx context.Context, s model.Supplier) (model.Supplier, error)
}
