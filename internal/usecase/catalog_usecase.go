package usecase

import (
	"context"
	"strings"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 仕入先・商品の登録だけ（更新・削除はしない）
type CatalogUsecase struct {
	tx    txRunner
	clock Clock
	log   logrus.FieldLogger
}

func NewCatalogUsecase(tm repo.TransactionManager, clock Clock, policy RetryPolicy, log logrus.FieldLogger) *CatalogUsecase {
	return &CatalogUsecase{tx: newTxRunner(tm, policy, log), clock: clock, log: log}
}

type CreateSupplierInput struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (u *CatalogUsecase) CreateSupplier(ctx context.Context, in CreateSupplierInput) (model.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Supplier{}, invalidInput("name is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return model.Supplier{}, invalidInput("phone is required")
	}

	now := u.clock.Now().UTC()
	var out model.Supplier
	err := u.tx.run(ctx, "supplier.create", func(r repo.TxRepos) error {
		seq, err := r.Sequences().Next(ctx, model.CounterSupplier)
		if err != nil {
			return err
		}
		s, err := r.Suppliers().Create(ctx, model.Supplier{
			Code:      FormatCode(PrefixSupplier, seq),
			Name:      name,
			Phone:     phone,
			Email:     strings.TrimSpace(in.Email),
			Address:   strings.TrimSpace(in.Address),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return model.Supplier{}, err
	}

	u.log.WithField("code", out.Code).Info("supplier created")
	return out, nil
}

type CreateProductInput struct {
	Name              string
	Category          string
	Brand             string
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	InitialStock      int64
	LowStockThreshold int64
}

// CreateProduct は商品を登録する。初期在庫はここでだけ直接入れる。
func (u *CatalogUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, invalidInput("name is required")
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return model.Product{}, invalidInput("prices must be >= 0")
	}
	if in.InitialStock < 0 {
		return model.Product{}, invalidInput("initial stock must be >= 0")
	}
	if in.LowStockThreshold < 0 {
		return model.Product{}, invalidInput("low_stock_threshold must be >= 0")
	}

	now := u.clock.Now().UTC()
	var out model.Product
	err := u.tx.run(ctx, "product.create", func(r repo.TxRepos) error {
		seq, err := r.Sequences().Next(ctx, model.CounterProduct)
		if err != nil {
			return err
		}
		p, err := r.Products().Create(ctx, model.Product{
			Code:              FormatCode(PrefixProduct, seq),
			Name:              name,
			Category:          strings.TrimSpace(in.Category),
			Brand:             strings.TrimSpace(in.Brand),
			CostPrice:         in.CostPrice,
			SellingPrice:      in.SellingPrice,
			Stock:             in.InitialStock,
			LowStockThreshold: in.LowStockThreshold,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.log.WithFields(logrus.Fields{"code": out.Code, "stock": out.Stock}).Info("product created")
	return out, nil
}
