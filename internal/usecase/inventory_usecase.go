package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// 在庫の参照系
type InventoryUsecase struct {
	products  repo.ProductRepository
	movements *MovementUsecase
}

func NewInventoryUsecase(products repo.ProductRepository, movements *MovementUsecase) *InventoryUsecase {
	return &InventoryUsecase{products: products, movements: movements}
}

type ProductInventory struct {
	model.Product
	Status model.StockStatus `json:"status"`
}

type ProductInventoryDetail struct {
	ProductInventory

	// 仕入・販売・返品による増減の合計
	NetMovement int64 `json:"net_movement"`
}

type ListInventoryInput struct {
	Page       int
	Limit      int
	Category   string
	LowStock   bool
	OutOfStock bool
}

type InventoryListOutput struct {
	Items []ProductInventory `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

func (u *InventoryUsecase) Overview(ctx context.Context) (repo.InventoryOverview, error) {
	ov, err := u.products.Overview(ctx)
	if err != nil {
		return repo.InventoryOverview{}, persistence(err)
	}
	return ov, nil
}

func (u *InventoryUsecase) ListProducts(ctx context.Context, in ListInventoryInput) (InventoryListOutput, error) {
	if in.Page < 1 {
		return InventoryListOutput{}, invalidInput("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return InventoryListOutput{}, invalidInput("invalid limit")
	}
	if len(in.Category) > 100 {
		return InventoryListOutput{}, invalidInput("category too long")
	}

	items, total, err := u.products.ListInventory(ctx, repo.InventoryListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Category:   strings.TrimSpace(in.Category),
		LowStock:   in.LowStock,
		OutOfStock: in.OutOfStock,
	})
	if err != nil {
		return InventoryListOutput{}, persistence(err)
	}

	return InventoryListOutput{
		Items: toInventory(items),
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *InventoryUsecase) Product(ctx context.Context, productID int64) (ProductInventoryDetail, error) {
	if productID <= 0 {
		return ProductInventoryDetail{}, invalidInput("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductInventoryDetail{}, NewAppError(KindReference, CodeProductNotFound,
			fmt.Sprintf("product %d not found", productID))
	}
	if err != nil {
		return ProductInventoryDetail{}, persistence(err)
	}

	net, err := u.movements.StockDelta(ctx, productID)
	if err != nil {
		return ProductInventoryDetail{}, err
	}
	return ProductInventoryDetail{
		ProductInventory: ProductInventory{Product: p, Status: p.Status()},
		NetMovement:      net,
	}, nil
}

// しきい値以下（在庫切れ含む）の商品、在庫の少ない順
func (u *InventoryUsecase) LowStock(ctx context.Context) ([]ProductInventory, error) {
	items, _, err := u.products.ListInventory(ctx, repo.InventoryListQuery{
		Page:     1,
		Limit:    100,
		LowStock: true,
	})
	if err != nil {
		return nil, persistence(err)
	}
	return toInventory(items), nil
}

func toInventory(items []model.Product) []ProductInventory {
	out := make([]ProductInventory, 0, len(items))
	for _, p := range items {
		out = append(out, ProductInventory{Product: p, Status: p.Status()})
	}
	return out
}
