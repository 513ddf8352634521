package usecase

import (
	"cmp"
	"context"
	"slices"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// MovementUsecase はpurchase/sale/returnの明細から在庫移動を組み立てる（読むだけ）。
type MovementUsecase struct {
	reader repo.MovementReader
}

func NewMovementUsecase(reader repo.MovementReader) *MovementUsecase {
	return &MovementUsecase{reader: reader}
}

type MovementFilter struct {
	ProductID *int64
	Type      *model.MovementType
	From      *time.Time
	To        *time.Time
}

type MovementPage = ListPage[model.Movement]

func (f MovementFilter) validate() error {
	if f.ProductID != nil && *f.ProductID <= 0 {
		return invalidFilter("invalid product_id")
	}
	if f.Type != nil && !f.Type.Valid() {
		return invalidFilter("type must be Purchase, Sale or Return")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return invalidFilter("from must be <= to")
	}
	return nil
}

// List は新しい順に並べてページングする。
// 同じ日時は type, code, 明細ID の順で並べるので何度呼んでも同じ結果になる。
func (u *MovementUsecase) List(ctx context.Context, f MovementFilter, page, limit int) (MovementPage, error) {
	if err := checkPaging(page, limit, maxListLimit); err != nil {
		return MovementPage{}, err
	}
	if err := f.validate(); err != nil {
		return MovementPage{}, err
	}

	items, err := u.collect(ctx, f)
	if err != nil {
		return MovementPage{}, err
	}

	slices.SortFunc(items, compareMovements)

	total := len(items)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return newListPage(items[start:end], int64(total), page, limit), nil
}

// StockDelta は商品の全移動の合計（= 現在庫 - 初期在庫）
func (u *MovementUsecase) StockDelta(ctx context.Context, productID int64) (int64, error) {
	if productID <= 0 {
		return 0, invalidFilter("invalid product_id")
	}
	items, err := u.collect(ctx, MovementFilter{ProductID: &productID})
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, m := range items {
		sum += m.Quantity
	}
	return sum, nil
}

func (u *MovementUsecase) collect(ctx context.Context, f MovementFilter) ([]model.Movement, error) {
	q := repo.MovementQuery{ProductID: f.ProductID, From: utcPtr(f.From), To: utcPtr(f.To)}
	want := func(t model.MovementType) bool { return f.Type == nil || *f.Type == t }

	var out []model.Movement

	if want(model.MovementPurchase) {
		rows, err := u.reader.PurchaseLines(ctx, q)
		if err != nil {
			return nil, persistence(err)
		}
		for _, r := range rows {
			out = append(out, toMovement(model.MovementPurchase, r, r.Quantity))
		}
	}

	if want(model.MovementSale) {
		rows, err := u.reader.SaleLines(ctx, q)
		if err != nil {
			return nil, persistence(err)
		}
		for _, r := range rows {
			out = append(out, toMovement(model.MovementSale, r, -r.Quantity))
		}
	}

	if want(model.MovementReturn) {
		rows, err := u.reader.ReturnLines(ctx, q)
		if err != nil {
			return nil, persistence(err)
		}
		for _, r := range rows {
			//在庫が動かない返品は出さない
			qty := model.StockDelta(r.ReferenceType, r.Restock, r.Quantity)
			if qty == 0 {
				continue
			}
			out = append(out, toMovement(model.MovementReturn, r, qty))
		}
	}

	if out == nil {
		out = []model.Movement{}
	}
	return out, nil
}

func toMovement(t model.MovementType, r repo.MovementRow, qty int64) model.Movement {
	return model.Movement{
		Type:        t,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    qty,
		Date:        r.Date.UTC(),
		Code:        r.Code,
		LineID:      r.LineID,
	}
}

func compareMovements(a, b model.Movement) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	return cmp.Compare(a.LineID, b.LineID)
}
