package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/sirupsen/logrus"
)

type ReturnUsecase struct {
	tx      txRunner
	returns repo.ReturnRepository
	clock   Clock
	log     logrus.FieldLogger
}

func NewReturnUsecase(
	tm repo.TransactionManager,
	returns repo.ReturnRepository,
	clock Clock,
	policy RetryPolicy,
	log logrus.FieldLogger,
) *ReturnUsecase {
	return &ReturnUsecase{
		tx:      newTxRunner(tm, policy, log),
		returns: returns,
		clock:   clock,
		log:     log,
	}
}

type ReturnLineInput struct {
	ProductID int64
	Quantity  int64
	Restock   *bool // nilならtrue
	Reason    string
}

type CreateReturnInput struct {
	Reference  model.Reference
	ReturnDate *time.Time
	Lines      []ReturnLineInput
}

func validateReference(ref model.Reference) error {
	if _, err := model.ParseReferenceType(string(ref.Type)); err != nil {
		return invalidInput("reference_type must be Sale or Purchase")
	}
	if ref.ID <= 0 {
		return invalidInput("reference_id is required")
	}
	return nil
}

func (in CreateReturnInput) validate() error {
	if err := validateReference(in.Reference); err != nil {
		return err
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
		if len(l.Reason) > 255 {
			return invalidInput("line %d: reason too long", line).at(line, l.ProductID)
		}
	}
	return nil
}

// 返品元の明細を商品ごとにまとめたもの。
// 同じ商品が複数行ある場合は数量を合計し、1行でも返品不可なら返品不可、期限は短い方。
type originalLine struct {
	quantity   int64
	returnable bool
	windowDays int
}

type originalTx struct {
	code         string
	purchaseDate time.Time
	lines        map[int64]originalLine
}

// 返品元をロック付きで読む。Sale / Purchase で別々に引く。
func loadOriginal(ctx context.Context, r repo.TxRepos, ref model.Reference) (originalTx, error) {
	out := originalTx{lines: map[int64]originalLine{}}

	switch ref.Type {
	case model.ReferenceSale:
		s, err := r.Sales().FindByIDForUpdate(ctx, ref.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return out, referenceNotFound(ref)
		}
		if err != nil {
			return out, err
		}
		out.code = s.Code
		for _, l := range s.Lines {
			o := out.lines[l.ProductID]
			o.quantity += l.Quantity
			o.returnable = true
			out.lines[l.ProductID] = o
		}

	case model.ReferencePurchase:
		p, err := r.Purchases().FindByIDForUpdate(ctx, ref.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return out, referenceNotFound(ref)
		}
		if err != nil {
			return out, err
		}
		//draftは在庫に入っていないので返品できない
		if p.Status != model.PurchaseStatusConfirmed {
			return out, NewAppError(KindStateConflict, CodeNotReturnable,
				fmt.Sprintf("purchase %s is not confirmed", p.Code))
		}
		out.code = p.Code
		out.purchaseDate = p.PurchaseDate
		for _, l := range p.Lines {
			o, seen := out.lines[l.ProductID]
			o.quantity += l.Quantity
			if !seen {
				o.returnable = l.Returnable
				o.windowDays = l.ReturnWindowDays
			} else {
				o.returnable = o.returnable && l.Returnable
				o.windowDays = min(o.windowDays, l.ReturnWindowDays)
			}
			out.lines[l.ProductID] = o
		}

	default:
		return out, invalidInput("reference_type must be Sale or Purchase")
	}
	return out, nil
}

// Create は返品を登録する。
// Sale+restockなら在庫を戻し、Purchase+restockなしなら在庫を減らす。それ以外は記録だけ。
func (u *ReturnUsecase) Create(ctx context.Context, in CreateReturnInput) (model.Return, error) {
	if err := in.validate(); err != nil {
		return model.Return{}, err
	}
	ref := in.Reference
	now := u.clock.Now().UTC()
	date := now
	if in.ReturnDate != nil {
		date = in.ReturnDate.UTC()
	}

	var out model.Return
	err := u.tx.run(ctx, "return.create", func(r repo.TxRepos) error {
		orig, err := loadOriginal(ctx, r, ref)
		if err != nil {
			return err
		}

		//これまでの返品数も元の数量に含めて判定する
		prior, err := r.Returns().ReturnedQuantities(ctx, ref)
		if err != nil {
			return err
		}

		alerts := newLowStockAlerts()
		requested := map[int64]int64{}
		lines := make([]model.ReturnLine, 0, len(in.Lines))

		for i, l := range in.Lines {
			line := i + 1
			o, ok := orig.lines[l.ProductID]
			if !ok {
				return NewAppError(KindInput, CodeInvalidLine,
					fmt.Sprintf("line %d: product %d is not part of %s", line, l.ProductID, orig.code)).at(line, l.ProductID)
			}

			requested[l.ProductID] += l.Quantity
			if already := prior[l.ProductID]; already+requested[l.ProductID] > o.quantity {
				return NewAppError(KindStateConflict, CodeExceedsOriginal,
					fmt.Sprintf("line %d: return quantity %d exceeds original %d (already returned %d)",
						line, requested[l.ProductID], o.quantity, already)).at(line, l.ProductID)
			}

			if ref.Type == model.ReferencePurchase {
				if !o.returnable {
					return NewAppError(KindStateConflict, CodeNotReturnable,
						fmt.Sprintf("line %d: product %d is not returnable", line, l.ProductID)).at(line, l.ProductID)
				}
				deadline := orig.purchaseDate.AddDate(0, 0, o.windowDays)
				if now.After(deadline) {
					return NewAppError(KindStateConflict, CodeWindowExpired,
						fmt.Sprintf("line %d: return window closed on %s", line, deadline.Format(time.DateOnly))).at(line, l.ProductID)
				}
			}

			restock := true
			if l.Restock != nil {
				restock = *l.Restock
			}
			if delta := model.StockDelta(ref.Type, restock, l.Quantity); delta != 0 {
				p, err := loadProduct(ctx, r, line, l.ProductID)
				if err != nil {
					return err
				}
				stock, err := r.Inventory().Adjust(ctx, l.ProductID, delta)
				if err != nil {
					return ledgerError(err, line, l.ProductID)
				}
				if delta < 0 {
					alerts.observe(p, stock)
				}
			}

			lines = append(lines, model.ReturnLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Restock:   restock,
				Reason:    strings.TrimSpace(l.Reason),
			})
		}

		seq, err := r.Sequences().Next(ctx, model.CounterReturn)
		if err != nil {
			return err
		}
		ret, err := r.Returns().Create(ctx, model.Return{
			Code:          FormatCode(PrefixReturn, seq),
			Seq:           seq,
			ReferenceType: ref.Type,
			ReferenceID:   ref.ID,
			ReturnDate:    date,
			Lines:         lines,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}

		if err := alerts.flush(ctx, r, now); err != nil {
			return err
		}
		retID := ret.ID
		if err := createAlert(ctx, r, model.Alert{
			Type:      model.AlertReturn,
			Message:   fmt.Sprintf("return %s recorded against %s", ret.Code, orig.code),
			RelatedID: &retID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		out = ret
		return nil
	})
	if err != nil {
		return model.Return{}, err
	}

	u.log.WithFields(logrus.Fields{
		"code":      out.Code,
		"reference": ref.String(),
		"lines":     len(out.Lines),
	}).Info("return created")
	return out, nil
}

func (u *ReturnUsecase) Get(ctx context.Context, id int64) (model.Return, error) {
	if id <= 0 {
		return model.Return{}, invalidInput("invalid return id")
	}
	ret, err := u.returns.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Return{}, NewAppError(KindReference, CodeNotFound, fmt.Sprintf("return %d not found", id))
	}
	if err != nil {
		return model.Return{}, persistence(err)
	}
	return ret, nil
}

func (u *ReturnUsecase) ListByReference(ctx context.Context, ref model.Reference) ([]model.Return, error) {
	if err := validateReference(ref); err != nil {
		return nil, err
	}
	items, err := u.returns.ListByReference(ctx, ref)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

type ListReturnsInput struct {
	ReferenceType string
	ProductID     *int64
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// 返品日の新しい順
func (u *ReturnUsecase) List(ctx context.Context, in ListReturnsInput) (ListPage[model.Return], error) {
	if err := checkPaging(in.Page, in.Limit, maxListLimit); err != nil {
		return ListPage[model.Return]{}, err
	}
	from, to, err := utcRange(in.From, in.To)
	if err != nil {
		return ListPage[model.Return]{}, err
	}
	if in.ProductID != nil && *in.ProductID <= 0 {
		return ListPage[model.Return]{}, invalidFilter("invalid product_id")
	}

	f := repo.ReturnFilter{
		ProductID: in.ProductID,
		From:      from,
		To:        to,
		Limit:     in.Limit,
		Offset:    (in.Page - 1) * in.Limit,
	}
	if in.ReferenceType != "" {
		t, err := model.ParseReferenceType(in.ReferenceType)
		if err != nil {
			return ListPage[model.Return]{}, invalidFilter("reference_type must be Sale or Purchase")
		}
		f.ReferenceType = &t
	}

	items, total, err := u.returns.List(ctx, f)
	if err != nil {
		return ListPage[model.Return]{}, persistence(err)
	}
	return newListPage(items, total, in.Page, in.Limit), nil
}

// Products は返品明細を商品名付きで返す。
func (u *ReturnUsecase) Products(ctx context.Context, id int64) ([]model.LineProduct, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := u.returns.LineProducts(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

func referenceNotFound(ref model.Reference) *AppError {
	return NewAppError(KindReference, CodeReferenceNotFound, fmt.Sprintf("%s not found", ref))
}
