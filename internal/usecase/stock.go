package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// Adjustのエラーを明細単位のAppErrorにする。DBエラーはそのまま返してTx側で判定させる。
func ledgerError(err error, line int, productID int64) error {
	var short *repo.StockShortageError
	switch {
	case errors.As(err, &short):
		return NewAppError(KindStateConflict, CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
				short.ProductID, short.Available, short.Requested)).at(line, productID)
	case errors.Is(err, repo.ErrNotFound):
		return productNotFound(line, productID)
	}
	return err
}

// 明細の商品を読む。見つからなければPRODUCT_NOT_FOUND。
func loadProduct(ctx context.Context, r repo.TxRepos, line int, productID int64) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, productNotFound(line, productID)
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// lowStockAlerts は1つのTxの中で、商品ごとに最後の在庫数を覚えておく。
// 在庫を減らした商品だけが対象。
type lowStockAlerts struct {
	products map[int64]model.Product
	stock    map[int64]int64
	order    []int64
}

func newLowStockAlerts() *lowStockAlerts {
	return &lowStockAlerts{products: map[int64]model.Product{}, stock: map[int64]int64{}}
}

func (a *lowStockAlerts) observe(p model.Product, newStock int64) {
	if _, ok := a.products[p.ID]; !ok {
		a.order = append(a.order, p.ID)
	}
	a.products[p.ID] = p
	a.stock[p.ID] = newStock
}

// しきい値以下の商品についてLowStockアラートを作る（同じTx内）
func (a *lowStockAlerts) flush(ctx context.Context, r repo.TxRepos, now time.Time) error {
	for _, id := range a.order {
		p, stock := a.products[id], a.stock[id]
		if stock > p.LowStockThreshold {
			continue
		}
		productID := p.ID
		msg := fmt.Sprintf("%s is low on stock: %d left (threshold %d)", p.Name, stock, p.LowStockThreshold)
		if stock == 0 {
			msg = fmt.Sprintf("%s is out of stock", p.Name)
		}
		if err := createAlert(ctx, r, model.Alert{
			Type:      model.AlertLowStock,
			Message:   msg,
			ProductID: &productID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func createAlert(ctx context.Context, r repo.TxRepos, a model.Alert) error {
	seq, err := r.Sequences().Next(ctx, model.CounterAlert)
	if err != nil {
		return err
	}
	a.Seq = seq
	a.Code = FormatCode(PrefixAlert, seq)
	_, err = r.Alerts().Create(ctx, a)
	return err
}
