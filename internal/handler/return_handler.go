package handler

import (
	"net/http"
	"time"

	"inventory/internal/domain/model"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReturnHandler struct {
	uc *usecase.ReturnUsecase
}

func NewReturnHandler(uc *usecase.ReturnUsecase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

type returnLineRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Restock   *bool  `json:"restock"`
	Reason    string `json:"reason" validate:"max=255"`
}

type createReturnRequest struct {
	ReferenceType string              `json:"reference_type" validate:"required,oneof=Sale Purchase"`
	ReferenceID   int64               `json:"reference_id" validate:"required,gt=0"`
	ReturnDate    *time.Time          `json:"return_date"`
	Lines         []returnLineRequest `json:"lines" validate:"required,min=1,max=200,dive"`
}

func (h *ReturnHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/returns", h.create)
	g.GET("/returns", h.list)
	g.GET("/returns/:id", h.get)
	g.GET("/returns/:id/products", h.products)
	g.GET("/returns/reference/:referenceId", h.listByReference)
}

func (h *ReturnHandler) create(c echo.Context) error {
	var req createReturnRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	lines := make([]usecase.ReturnLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.ReturnLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Restock:   l.Restock,
			Reason:    l.Reason,
		})
	}

	ret, err := h.uc.Create(c.Request().Context(), usecase.CreateReturnInput{
		Reference:  model.Reference{Type: model.ReferenceType(req.ReferenceType), ID: req.ReferenceID},
		ReturnDate: req.ReturnDate,
		Lines:      lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ret)
}

func (h *ReturnHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ret, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ret)
}

// GET /returns/reference/:referenceId?reference_type=Sale
func (h *ReturnHandler) listByReference(c echo.Context) error {
	id, err := pathID(c, "referenceId")
	if err != nil {
		return writeError(c, err)
	}
	refType, err := model.ParseReferenceType(c.QueryParam("reference_type"))
	if err != nil {
		return writeError(c, badRequest("reference_type must be Sale or Purchase"))
	}

	items, err := h.uc.ListByReference(c.Request().Context(), model.Reference{Type: refType, ID: id})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GET /returns?reference_type=&product_id=&from=&to=&page=&limit=
func (h *ReturnHandler) list(c echo.Context) error {
	page, limit, err := queryPaging(c, 10)
	if err != nil {
		return writeError(c, err)
	}
	productID, err := queryID(c, "product_id")
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListReturnsInput{
		ReferenceType: c.QueryParam("reference_type"),
		ProductID:     productID,
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

func (h *ReturnHandler) products(c echo.Context) error {
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
