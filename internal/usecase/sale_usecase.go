package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type SaleUsecase struct {
	tx    txRunner
	sales repo.SaleRepository
	clock Clock
	log   logrus.FieldLogger
}

func NewSaleUsecase(
	tm repo.TransactionManager,
	sales repo.SaleRepository,
	clock Clock,
	policy RetryPolicy,
	log logrus.FieldLogger,
) *SaleUsecase {
	return &SaleUsecase{
		tx:    newTxRunner(tm, policy, log),
		sales: sales,
		clock: clock,
		log:   log,
	}
}

type SaleLineInput struct {
	ProductID int64
	Quantity  int64

	// nilなら商品の販売価格
	UnitPrice *decimal.Decimal
}

type CreateSaleInput struct {
	CustomerName  string
	PaymentMethod model.PaymentMethod // ""はCash
	SaleDate      *time.Time
	Lines         []SaleLineInput
}

func (in CreateSaleInput) validate() error {
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return invalidInput("invalid payment_method %q", in.PaymentMethod)
	}
	if len(in.Lines) == 0 {
		return invalidInput("at least one line is required")
	}
	if len(in.Lines) > maxLinesPerTransaction {
		return invalidInput("too many lines (max %d)", maxLinesPerTransaction)
	}
	for i, l := range in.Lines {
		line := i + 1
		if l.ProductID <= 0 {
			return invalidInput("line %d: product_id is required", line).at(line, 0)
		}
		if l.Quantity <= 0 {
			return invalidInput("line %d: quantity must be > 0", line).at(line, l.ProductID)
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return invalidInput("line %d: unit_price must be >= 0", line).at(line, l.ProductID)
		}
	}
	return nil
}

// Create は販売を登録する。1明細でも在庫不足なら全体を取り消す。
func (u *SaleUsecase) Create(ctx context.Context, in CreateSaleInput) (model.Sale, error) {
	if err := in.validate(); err != nil {
		return model.Sale{}, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCash
	}
	now := u.clock.Now().UTC()
	date := now
	if in.SaleDate != nil {
		date = in.SaleDate.UTC()
	}

	var out model.Sale
	err := u.tx.run(ctx, "sale.create", func(r repo.TxRepos) error {
		alerts := newLowStockAlerts()
		lines := make([]model.SaleLine, 0, len(in.Lines))
		total := decimal.Zero

		for i, l := range in.Lines {
			line := i + 1
			p, err := loadProduct(ctx, r, line, l.ProductID)
			if err != nil {
				return err
			}

			//在庫が足りるときだけ減らす（足りなければStockShortageError）
			stock, err := r.Inventory().Adjust(ctx, l.ProductID, -l.Quantity)
			if err != nil {
				return ledgerError(err, line, l.ProductID)
			}
			alerts.observe(p, stock)

			price := p.SellingPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			lineTotal := price.Mul(decimal.NewFromInt(l.Quantity))
			total = total.Add(lineTotal)
			lines = append(lines, model.SaleLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: price,
				LineTotal: lineTotal,
			})
		}

		seq, err := r.Sequences().Next(ctx, model.CounterSale)
		if err != nil {
			return err
		}
		s, err := r.Sales().Create(ctx, model.Sale{
			Code:          FormatCode(PrefixSale, seq),
			Seq:           seq,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			PaymentMethod: method,
			SaleDate:      date,
			TotalAmount:   total,
			Lines:         lines,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := alerts.flush(ctx, r, now); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}

	u.log.WithFields(logrus.Fields{
		"code":  out.Code,
		"lines": len(out.Lines),
		"total": out.TotalAmount.StringFixed(2),
	}).Info("sale created")
	return out, nil
}

// UpdatePayment は支払方法だけを変える。明細と在庫はそのまま。
func (u *SaleUsecase) UpdatePayment(ctx context.Context, id int64, method model.PaymentMethod) (model.Sale, error) {
	if id <= 0 {
		return model.Sale{}, invalidInput("invalid sale id")
	}
	if !method.Valid() {
		return model.Sale{}, invalidInput("invalid payment_method %q", method)
	}

	var out model.Sale
	err := u.tx.run(ctx, "sale.update_payment", func(r repo.TxRepos) error {
		if err := r.Sales().UpdatePaymentMethod(ctx, id, method); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return saleNotFound(id)
			}
			return err
		}
		s, err := r.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return model.Sale{}, err
	}
	return out, nil
}

func (u *SaleUsecase) Get(ctx context.Context, id int64) (model.Sale, error) {
	if id <= 0 {
		return model.Sale{}, invalidInput("invalid sale id")
	}
	s, err := u.sales.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Sale{}, saleNotFound(id)
	}
	if err != nil {
		return model.Sale{}, persistence(err)
	}
	return s, nil
}

type ListSalesInput struct {
	PaymentMethod string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

func (u *SaleUsecase) List(ctx context.Context, in ListSalesInput) (ListPage[model.Sale], error) {
	if err := checkPaging(in.Page, in.Limit, maxListLimit); err != nil {
		return ListPage[model.Sale]{}, err
	}
	from, to, err := utcRange(in.From, in.To)
	if err != nil {
		return ListPage[model.Sale]{}, err
	}

	f := repo.SaleFilter{From: from, To: to, Limit: in.Limit, Offset: (in.Page - 1) * in.Limit}
	if in.PaymentMethod != "" {
		m := model.PaymentMethod(in.PaymentMethod)
		if !m.Valid() {
			return ListPage[model.Sale]{}, invalidFilter("payment_method must be Cash, Card or Mobile")
		}
		f.PaymentMethod = &m
	}

	items, total, err := u.sales.List(ctx, f)
	if err != nil {
		return ListPage[model.Sale]{}, persistence(err)
	}
	return newListPage(items, total, in.Page, in.Limit), nil
}

func (u *SaleUsecase) Products(ctx context.Context, id int64) ([]model.LineProduct, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := u.sales.LineProducts(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

func saleNotFound(id int64) *AppError {
	return NewAppError(KindReference, CodeNotFound, fmt.Sprintf("sale %d not found", id))
}
