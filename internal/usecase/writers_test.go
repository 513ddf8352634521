package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"inventory/internal/domain/model"
	"inventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.supplier(t)
	pen := e.product(t, "pen", 0, 1)

	purchase, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 10, CostPrice: dec(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PUR-0001", purchase.Code)
	assert.Equal(t, model.PurchaseStatusConfirmed, purchase.Status)
	assert.True(t, purchase.TotalAmount.Equal(dec(20)))
	require.Len(t, purchase.Lines, 1)
	assert.True(t, purchase.Lines[0].Returnable)
	assert.Equal(t, 7, purchase.Lines[0].ReturnWindowDays)
	assert.Equal(t, int64(10), e.stock(t, pen.ID))

	sale, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerName: "walk-in",
		Lines:        []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 4, UnitPrice: ptr(dec(5))}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SAL-0001", sale.Code)
	assert.Equal(t, model.PaymentMethodCash, sale.PaymentMethod)
	assert.True(t, sale.TotalAmount.Equal(dec(20)))
	assert.Equal(t, int64(6), e.stock(t, pen.ID))

	ret, err := e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 2, Restock: ptr(true)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "RET-0001", ret.Code)
	assert.Equal(t, int64(8), e.stock(t, pen.ID))

	e.clock.Advance(8 * 24 * time.Hour)
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.PurchaseRef(purchase.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 3, Restock: ptr(false)}},
	})
	ae := requireAppError(t, err, usecase.KindStateConflict, usecase.CodeWindowExpired)
	assert.Equal(t, 1, ae.Line)
	assert.Equal(t, pen.ID, ae.ProductID)
	assert.Equal(t, int64(8), e.stock(t, pen.ID))

	//移動の合計 = 現在庫 - 初期在庫
	delta, err := e.movements.StockDelta(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), delta)
}

func TestPurchaseReturnWindow(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		wantErr bool
	}{
		{"one day before deadline", 6 * 24 * time.Hour, false},
		{"at deadline", 7 * 24 * time.Hour, false},
		{"one second after deadline", 7*24*time.Hour + time.Second, true},
		{"eight days later", 8 * 24 * time.Hour, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			s := e.supplier(t)
			pen := e.product(t, "pen", 0, 0)

			p, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
				SupplierID: s.ID,
				Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 10, CostPrice: dec(2)}},
			})
			require.NoError(t, err)

			e.clock.Advance(tc.elapsed)
			_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
				Reference: model.PurchaseRef(p.ID),
				Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 3, Restock: ptr(false)}},
			})
			if tc.wantErr {
				requireAppError(t, err, usecase.KindStateConflict, usecase.CodeWindowExpired)
				assert.Equal(t, int64(10), e.stock(t, pen.ID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), e.stock(t, pen.ID))
		})
	}
}

func TestPurchaseReturn_NotReturnable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.supplier(t)
	pen := e.product(t, "pen", 0, 0)

	p, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines: []usecase.PurchaseLineInput{
			{ProductID: pen.ID, Quantity: 5, CostPrice: dec(1), Returnable: ptr(false), ReturnWindowDays: ptr(30)},
		},
	})
	require.NoError(t, err)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.PurchaseRef(p.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 1, Restock: ptr(false)}},
	})
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeNotReturnable)
	assert.Equal(t, int64(5), e.stock(t, pen.ID))
}

func TestReturn_ExceedsOriginalCountsEarlierReturns(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pen := e.product(t, "pen", 10, 0)

	sale, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 5}},
	})
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeExceedsOriginal)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 2}},
	})
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeExceedsOriginal)

	//同じ返品の中で2行に分けても合計で判定
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines: []usecase.ReturnLineInput{
			{ProductID: pen.ID, Quantity: 1},
			{ProductID: pen.ID, Quantity: 1},
		},
	})
	ae := requireAppError(t, err, usecase.KindStateConflict, usecase.CodeExceedsOriginal)
	assert.Equal(t, 2, ae.Line)

	assert.Equal(t, int64(9), e.stock(t, pen.ID))
}

func TestReturn_ReferenceAndLineErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pen := e.product(t, "pen", 10, 0)
	ink := e.product(t, "ink", 10, 0)

	sale, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(9999),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 1}},
	})
	requireAppError(t, err, usecase.KindReference, usecase.CodeReferenceNotFound)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: ink.ID, Quantity: 1}},
	})
	ae := requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidLine)
	assert.Equal(t, ink.ID, ae.ProductID)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.Reference{Type: "Order", ID: sale.ID},
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 1}},
	})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 0}},
	})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)
}

func TestReturn_StockPolicy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.supplier(t)
	pen := e.product(t, "pen", 0, 0)

	p, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 10, CostPrice: dec(1)}},
	})
	require.NoError(t, err)
	sale, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 6}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), e.stock(t, pen.ID))

	//Sale + restockなし: 在庫は動かない
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 1, Restock: ptr(false), Reason: "damaged"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.stock(t, pen.ID))

	//Purchase + restock: 在庫は動かない
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.PurchaseRef(p.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 2, Restock: ptr(true)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.stock(t, pen.ID))

	//Purchase + restockなしで在庫が足りない
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.PurchaseRef(p.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 5, Restock: ptr(false)}},
	})
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeInsufficientStock)
	assert.Equal(t, int64(4), e.stock(t, pen.ID))

	list, err := e.returns.ListByReference(ctx, model.PurchaseRef(p.ID))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	//在庫が動かない返品は移動に出ない
	page, err := e.movements.List(ctx, usecase.MovementFilter{Type: ptr(model.MovementReturn)}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSale_AllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.product(t, "a", 5, 0)
	b := e.product(t, "b", 1, 0)

	_, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{
			{ProductID: a.ID, Quantity: 3},
			{ProductID: b.ID, Quantity: 2},
		},
	})
	ae := requireAppError(t, err, usecase.KindStateConflict, usecase.CodeInsufficientStock)
	assert.Equal(t, 2, ae.Line)
	assert.Equal(t, b.ID, ae.ProductID)

	assert.Equal(t, int64(5), e.stock(t, a.ID))
	assert.Equal(t, int64(1), e.stock(t, b.ID))

	//失敗したTxの採番も残らない
	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{{ProductID: a.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SAL-0001", s.Code)
	assert.True(t, s.TotalAmount.Equal(dec(5)), "defaults to selling price")
}

func TestSale_UnknownProduct(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "a", 5, 0)

	_, err := e.sales.Create(context.Background(), usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: 9999, Quantity: 1},
		},
	})
	ae := requireAppError(t, err, usecase.KindReference, usecase.CodeProductNotFound)
	assert.Equal(t, 2, ae.Line)
	assert.Equal(t, int64(5), e.stock(t, a.ID))
}

func TestSale_ConcurrentOversell(t *testing.T) {
	e := newEnv(t)
	pen := e.product(t, "pen", 5, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.sales.Create(context.Background(), usecase.CreateSaleInput{
				Lines: []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	ok, short := 0, 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if ae, isApp := usecase.AsAppError(err); isApp && ae.Code == usecase.CodeInsufficientStock {
			short++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, int64(2), e.stock(t, pen.ID))
}

func TestSale_UpdatePayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pen := e.product(t, "pen", 5, 0)

	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		PaymentMethod: model.PaymentMethodCard,
		Lines:         []usecase.SaleLineInput{{ProductID: pen.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	got, err := e.sales.UpdatePayment(ctx, s.ID, model.PaymentMethodMobile)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMethodMobile, got.PaymentMethod)
	assert.Len(t, got.Lines, 1)
	assert.Equal(t, int64(3), e.stock(t, pen.ID))

	_, err = e.sales.UpdatePayment(ctx, s.ID, "Cheque")
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)

	_, err = e.sales.UpdatePayment(ctx, 9999, model.PaymentMethodCash)
	requireAppError(t, err, usecase.KindReference, usecase.CodeNotFound)
}

func TestPurchase_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.supplier(t)
	pen := e.product(t, "pen", 0, 0)

	_, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: 9999,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 1, CostPrice: dec(1)}},
	})
	requireAppError(t, err, usecase.KindReference, usecase.CodeSupplierNotFound)

	_, err = e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines: []usecase.PurchaseLineInput{
			{ProductID: pen.ID, Quantity: 1, CostPrice: dec(1)},
			{ProductID: 9999, Quantity: 1, CostPrice: dec(1)},
		},
	})
	ae := requireAppError(t, err, usecase.KindReference, usecase.CodeProductNotFound)
	assert.Equal(t, 2, ae.Line)
	assert.Equal(t, int64(0), e.stock(t, pen.ID))

	_, err = e.purchases.Create(ctx, usecase.CreatePurchaseInput{SupplierID: s.ID})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)

	_, err = e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 1, CostPrice: dec(-1)}},
	})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)

	_, err = e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: -2, CostPrice: dec(1)}},
	})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidInput)
}

func TestPurchase_DraftThenConfirm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.supplier(t)
	pen := e.product(t, "pen", 1, 0)

	p, err := e.purchases.Create(ctx, usecase.CreatePurchaseInput{
		SupplierID: s.ID,
		Status:     model.PurchaseStatusDraft,
		Lines:      []usecase.PurchaseLineInput{{ProductID: pen.ID, Quantity: 4, CostPrice: dec(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusDraft, p.Status)
	assert.Equal(t, int64(1), e.stock(t, pen.ID))

	//draftには返品できない
	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.PurchaseRef(p.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: pen.ID, Quantity: 1, Restock: ptr(false)}},
	})
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeNotReturnable)

	//draftは移動に出ない
	page, err := e.movements.List(ctx, usecase.MovementFilter{ProductID: &pen.ID}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	confirmed, err := e.purchases.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(5), e.stock(t, pen.ID))

	_, err = e.purchases.Confirm(ctx, p.ID)
	requireAppError(t, err, usecase.KindStateConflict, usecase.CodeAlreadyConfirmed)
	assert.Equal(t, int64(5), e.stock(t, pen.ID))

	_, err = e.purchases.Confirm(ctx, 9999)
	requireAppError(t, err, usecase.KindReference, usecase.CodeNotFound)

	got, err := e.purchases.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusConfirmed, got.Status)
}

func TestAlerts_LowStockAndReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	pen := e.product(t, "pen", 5, 3)
	ink := e.product(t, "ink", 50, 3)

	sale, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		Lines: []usecase.SaleLineInput{
			{ProductID: pen.ID, Quantity: 2},
			{ProductID: ink.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	out, err := e.alerts.List(ctx, usecase.ListAlertsInput{Type: string(model.AlertLowStock), Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.NotNil(t, out.Items[0].ProductID)
	assert.Equal(t, pen.ID, *out.Items[0].ProductID)
	assert.Equal(t, "ALT-0001", out.Items[0].Code)

	_, err = e.returns.Create(ctx, usecase.CreateReturnInput{
		Reference: model.SaleRef(sale.ID),
		Lines:     []usecase.ReturnLineInput{{ProductID: ink.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	out, err = e.alerts.List(ctx, usecase.ListAlertsInput{Type: string(model.AlertReturn), Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.NotNil(t, out.Items[0].RelatedID)

	require.NoError(t, e.alerts.MarkRead(ctx, out.Items[0].ID))
	n, err := e.alerts.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = e.alerts.MarkRead(ctx, 9999)
	requireAppError(t, err, usecase.KindReference, usecase.CodeNotFound)

	_, err = e.alerts.List(ctx, usecase.ListAlertsInput{Type: "Other", Page: 1, Limit: 10})
	requireAppError(t, err, usecase.KindInput, usecase.CodeInvalidFilter)
}
