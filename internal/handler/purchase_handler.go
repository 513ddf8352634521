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

type PurchaseHandler struct {
	uc *usecase.PurchaseUsecase
}

func NewPurchaseHandler(uc *usecase.PurchaseUsecase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

type purchaseLineRequest struct {
	ProductID        int64           `json:"product_id" validate:"required,gt=0"`
	Quantity         int64           `json:"quantity" validate:"required,gt=0"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	Returnable       *bool           `json:"returnable"`
	ReturnWindowDays *int            `json:"return_window_days" validate:"omitempty,gte=0"`
}

type createPurchaseRequest struct {
	SupplierID    int64                 `json:"supplier_id" validate:"required,gt=0"`
	InvoiceNumber string                `json:"invoice_number" validate:"max=100"`
	PurchaseDate  *time.Time            `json:"purchase_date"`
	Status        string                `json:"status" validate:"omitempty,oneof=draft confirmed"`
	Lines         []purchaseLineRequest `json:"lines" validate:"required,min=1,max=200,dive"`
}

func (h *PurchaseHandler) RegisterRoutes(g *echo.Group) {
	managers := middleware.RoleGuard(middleware.RoleAdmin, middleware.RoleManager)
	g.POST("/purchases", h.create, managers)
	g.POST("/purchases/:id/confirm", h.confirm, managers)
	g.GET("/purchases", h.list)
	g.GET("/purchases/:id", h.get)
	g.GET("/purchases/:id/products", h.products)
}

func (h *PurchaseHandler) create(c echo.Context) error {
	var req createPurchaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	lines := make([]usecase.PurchaseLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.PurchaseLineInput{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			CostPrice:        l.CostPrice,
			Returnable:       l.Returnable,
			ReturnWindowDays: l.ReturnWindowDays,
		})
	}

	p, err := h.uc.Create(c.Request().Context(), usecase.CreatePurchaseInput{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		PurchaseDate:  req.PurchaseDate,
		Status:        model.PurchaseStatus(req.Status),
		Lines:         lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PurchaseHandler) confirm(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.Confirm(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PurchaseHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /purchases?status=&supplier_id=&from=&to=&page=&limit=
func (h *PurchaseHandler) list(c echo.Context) error {
	page, limit, err := queryPaging(c, 10)
	if err != nil {
		return writeError(c, err)
	}
	supplierID, err := queryID(c, "supplier_id")
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListPurchasesInput{
		Status:     c.QueryParam("status"),
		SupplierID: supplierID,
		From:       from,
		To:         to,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseHandler) products(c echo.Context) error {
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
