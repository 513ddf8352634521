package handler

import (
	"net/http"

	"inventory/internal/middleware"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 仕入先・商品の登録
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

type createSupplierRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"required,max=30"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Address string `json:"address" validate:"max=1000"`
}

type createProductRequest struct {
	Name              string          `json:"name" validate:"required,max=255"`
	Category          string          `json:"category" validate:"max=100"`
	Brand             string          `json:"brand" validate:"max=100"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	Stock             int64           `json:"stock" validate:"gte=0"`
	LowStockThreshold int64           `json:"low_stock_threshold" validate:"gte=0"`
}

func (h *CatalogHandler) RegisterRoutes(g *echo.Group) {
	managers := middleware.RoleGuard(middleware.RoleAdmin, middleware.RoleManager)
	g.POST("/suppliers", h.createSupplier, managers)
	g.POST("/products", h.createProduct, managers)
}

func (h *CatalogHandler) createSupplier(c echo.Context) error {
	var req createSupplierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	s, err := h.uc.CreateSupplier(c.Request().Context(), usecase.CreateSupplierInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) createProduct(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Name:              req.Name,
		Category:          req.Category,
		Brand:             req.Brand,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		InitialStock:      req.Stock,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}
