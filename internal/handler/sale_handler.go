package handler

import (
	"net/http"
	"time"

	"inventory/internal/domain/model"
	"inventory/internal/middleware"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	uc *usecase.SaleUsecase
}

func NewSaleHandler(uc *usecase.SaleUsecase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

type saleLineRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type createSaleRequest struct {
	CustomerName  string            `json:"customer_name" validate:"max=255"`
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=Cash Card Mobile"`
	SaleDate      *time.Time        `json:"sale_date"`
	Lines         []saleLineRequest `json:"lines" validate:"required,min=1,max=200,dive"`
}

type updatePaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=Cash Card Mobile"`
}

func (h *SaleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sales", h.create)
	g.GET("/sales", h.list)
	g.GET("/sales/:id", h.get)
	g.GET("/sales/:id/products", h.products)
	g.PATCH("/sales/:id/payment", h.updatePayment, middleware.RoleGuard(middleware.RoleAdmin, middleware.RoleManager))
}

func (h *SaleHandler) create(c echo.Context) error {
	var req createSaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	lines := make([]usecase.SaleLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.SaleLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	s, err := h.uc.Create(c.Request().Context(), usecase.CreateSaleInput{
		CustomerName:  req.CustomerName,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		SaleDate:      req.SaleDate,
		Lines:         lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *SaleHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	s, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) list(c echo.Context) error {
	page, limit, err := queryPaging(c, 10)
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListSalesInput{
		PaymentMethod: c.QueryParam("payment_method"),
		From:          from,
		To:            to,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SaleHandler) products(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.uc.Products(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// 支払方法だけ変更できる
func (h *SaleHandler) updatePayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req updatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	s, err := h.uc.UpdatePayment(c.Request().Context(), id, model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
