package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

type SaleFilter struct {
	PaymentMethod *model.PaymentMethod
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type SaleRepository interface {
	Create(ctx context.Context, s model.Sale) (model.Sale, error)
	FindByID(ctx context.Context, id int64) (model.Sale, error)
	FindByIDForUpdate(ctx context.Context, id int64) (model.Sale, error)

	// 支払方法だけ変える（明細・在庫は触らない）
	UpdatePaymentMethod(ctx context.Context, id int64, method model.PaymentMethod) error

	List(ctx context.Context, f SaleFilter) ([]model.Sale, int64, error)
	LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error)
}
