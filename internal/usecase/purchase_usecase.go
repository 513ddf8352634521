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

const maxLinesPerTransaction = 200

type PurchaseUsecase struct {
	tx        txRunner
	purchases repo.PurchaseRepository
	clock     Clock
	log       logrus.FieldLogger
}

func NewPurchaseUsecase(
	tm repo.TransactionManager,
	purchases repo.PurchaseRepository,
	clock Clock,
	policy RetryPolicy,
	log logrus.FieldLogger,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		tx:        newTxRunner(tm, policy, log),
		purchases: purchases,
		clock:     clock,
		log:       log,
	}
}

type PurchaseLineInput struct {
	ProductID int64
	Quantity  int64
	CostPrice decimal.Decimal

	// nilなら true / 7日
	Returnable       *bool
	ReturnWindowDays *int
}

type CreatePurchaseInput struct {
	SupplierID    int64
	InvoiceNumber string
	PurchaseDate  *time.Time

	// "" は confirmed
	Status model.PurchaseStatus
	Lines  []PurchaseLineInput
}

func (in CreatePurchaseInput) validate() error {
	if in.SupplierID <= 0 {
		return invalidInput("supplier_id is required")
	}
	switch in.Status {
	case "", model.PurchaseStatusDraft, model.PurchaseStatusConfirmed:
	default:
		return invalidInput("invalid status %q", in.Status)
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
		if l.CostPrice.IsNegative() {
			return invalidInput("line %d: cost_price must be >= 0", line).at(line, l.ProductID)
		}
		if l.ReturnWindowDays != nil && *l.ReturnWindowDays < 0 {
			return invalidInput("line %d: return_window_days must be >= 0", line).at(line, l.ProductID)
		}
	}
	return nil
}

// Create は仕入を登録する。confirmedなら明細ごとに在庫を増やす（全明細まとめてcommit）。
func (u *PurchaseUsecase) Create(ctx context.Context, in CreatePurchaseInput) (model.Purchase, error) {
	if err := in.validate(); err != nil {
		return model.Purchase{}, err
	}
	status := in.Status
	if status == "" {
		status = model.PurchaseStatusConfirmed
	}
	now := u.clock.Now().UTC()
	date := now
	if in.PurchaseDate != nil {
		date = in.PurchaseDate.UTC()
	}

	var out model.Purchase
	err := u.tx.run(ctx, "purchase.create", func(r repo.TxRepos) error {
		if _, err := r.Suppliers().FindByID(ctx, in.SupplierID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewAppError(KindReference, CodeSupplierNotFound,
					fmt.Sprintf("supplier %d not found", in.SupplierID))
			}
			return err
		}

		lines := make([]model.PurchaseLine, 0, len(in.Lines))
		total := decimal.Zero
		for i, l := range in.Lines {
			line := i + 1
			if _, err := loadProduct(ctx, r, line, l.ProductID); err != nil {
				return err
			}

			lineTotal := l.CostPrice.Mul(decimal.NewFromInt(l.Quantity))
			total = total.Add(lineTotal)

			//draftは在庫に触らない
			if status == model.PurchaseStatusConfirmed {
				if _, err := r.Inventory().Adjust(ctx, l.ProductID, l.Quantity); err != nil {
					return ledgerError(err, line, l.ProductID)
				}
			}

			returnable := true
			if l.Returnable != nil {
				returnable = *l.Returnable
			}
			window := model.DefaultReturnWindowDays
			if l.ReturnWindowDays != nil {
				window = *l.ReturnWindowDays
			}
			lines = append(lines, model.PurchaseLine{
				ProductID:        l.ProductID,
				Quantity:         l.Quantity,
				UnitCost:         l.CostPrice,
				LineTotal:        lineTotal,
				Returnable:       returnable,
				ReturnWindowDays: window,
			})
		}

		seq, err := r.Sequences().Next(ctx, model.CounterPurchase)
		if err != nil {
			return err
		}
		p, err := r.Purchases().Create(ctx, model.Purchase{
			Code:          FormatCode(PrefixPurchase, seq),
			Seq:           seq,
			SupplierID:    in.SupplierID,
			InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
			PurchaseDate:  date,
			Status:        status,
			TotalAmount:   total,
			Lines:         lines,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Purchase{}, err
	}

	u.log.WithFields(logrus.Fields{
		"code":   out.Code,
		"status": out.Status,
		"lines":  len(out.Lines),
		"total":  out.TotalAmount.StringFixed(2),
	}).Info("purchase created")
	return out, nil
}

// Confirm はdraftをconfirmedにして在庫に反映する。戻せない。
func (u *PurchaseUsecase) Confirm(ctx context.Context, id int64) (model.Purchase, error) {
	if id <= 0 {
		return model.Purchase{}, invalidInput("invalid purchase id")
	}

	var out model.Purchase
	err := u.tx.run(ctx, "purchase.confirm", func(r repo.TxRepos) error {
		p, err := r.Purchases().FindByIDForUpdate(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return purchaseNotFound(id)
		}
		if err != nil {
			return err
		}
		if p.Status == model.PurchaseStatusConfirmed {
			return alreadyConfirmed(p.Code)
		}

		if err := r.Purchases().Confirm(ctx, id); err != nil {
			switch {
			case errors.Is(err, repo.ErrAlreadyConfirmed):
				return alreadyConfirmed(p.Code)
			case errors.Is(err, repo.ErrNotFound):
				return purchaseNotFound(id)
			}
			return err
		}

		for i, l := range p.Lines {
			if _, err := r.Inventory().Adjust(ctx, l.ProductID, l.Quantity); err != nil {
				return ledgerError(err, i+1, l.ProductID)
			}
		}

		p.Status = model.PurchaseStatusConfirmed
		out = p
		return nil
	})
	if err != nil {
		return model.Purchase{}, err
	}

	u.log.WithFields(logrus.Fields{
		"code":  out.Code,
		"lines": len(out.Lines),
		"total": out.TotalAmount.StringFixed(2),
	}).Info("purchase confirmed")
	return out, nil
}

func (u *PurchaseUsecase) Get(ctx context.Context, id int64) (model.Purchase, error) {
	if id <= 0 {
		return model.Purchase{}, invalidInput("invalid purchase id")
	}
	p, err := u.purchases.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Purchase{}, purchaseNotFound(id)
	}
	if err != nil {
		return model.Purchase{}, persistence(err)
	}
	return p, nil
}

type ListPurchasesInput struct {
	Status     string
	SupplierID *int64
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// 仕入日の新しい順
func (u *PurchaseUsecase) List(ctx context.Context, in ListPurchasesInput) (ListPage[model.Purchase], error) {
	if err := checkPaging(in.Page, in.Limit, maxListLimit); err != nil {
		return ListPage[model.Purchase]{}, err
	}
	from, to, err := utcRange(in.From, in.To)
	if err != nil {
		return ListPage[model.Purchase]{}, err
	}

	f := repo.PurchaseFilter{
		SupplierID: in.SupplierID,
		From:       from,
		To:         to,
		Limit:      in.Limit,
		Offset:     (in.Page - 1) * in.Limit,
	}
	if in.Status != "" {
		s := model.PurchaseStatus(in.Status)
		if s != model.PurchaseStatusDraft && s != model.PurchaseStatusConfirmed {
			return ListPage[model.Purchase]{}, invalidFilter("status must be draft or confirmed")
		}
		f.Status = &s
	}
	if f.SupplierID != nil && *f.SupplierID <= 0 {
		return ListPage[model.Purchase]{}, invalidFilter("invalid supplier_id")
	}

	items, total, err := u.purchases.List(ctx, f)
	if err != nil {
		return ListPage[model.Purchase]{}, persistence(err)
	}
	return newListPage(items, total, in.Page, in.Limit), nil
}

// Products は仕入の明細を商品名付きで返す。
func (u *PurchaseUsecase) Products(ctx context.Context, id int64) ([]model.LineProduct, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := u.purchases.LineProducts(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

func purchaseNotFound(id int64) *AppError {
	return NewAppError(KindReference, CodeNotFound, fmt.Sprintf("purchase %d not found", id))
}

func alreadyConfirmed(code string) *AppError {
	return NewAppError(KindStateConflict, CodeAlreadyConfirmed, fmt.Sprintf("purchase %s is already confirmed", code))
}
