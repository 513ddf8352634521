package handler

import (
	"net/http"

	"inventory/internal/domain/model"
	"inventory/internal/middleware"
	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /inventory 配下（在庫移動・在庫一覧）
type InventoryHandler struct {
	inventory *usecase.InventoryUsecase
	movements *usecase.MovementUsecase
}

func NewInventoryHandler(inventory *usecase.InventoryUsecase, movements *usecase.MovementUsecase) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, movements: movements}
}

func (h *InventoryHandler) RegisterRoutes(g *echo.Group) {
	inv := g.Group("/inventory")
	managers := middleware.RoleGuard(middleware.RoleAdmin, middleware.RoleManager)

	inv.GET("/movements", h.movementList, managers)
	inv.GET("/overview", h.overview, managers)
	inv.GET("/products", h.products)
	inv.GET("/products/:productId", h.product)
	inv.GET("/low-stock", h.lowStock)
}

func (h *InventoryHandler) movementList(c echo.Context) error {
	page, limit, err := queryPaging(c, 20)
	if err != nil {
		return writeError(c, err)
	}

	var f usecase.MovementFilter
	if f.ProductID, err = queryID(c, "product_id"); err != nil {
		return writeError(c, err)
	}
	if v := c.QueryParam("type"); v != "" {
		t := model.MovementType(v)
		f.Type = &t
	}
	if f.From, f.To, err = queryRange(c); err != nil {
		return writeError(c, err)
	}

	out, err := h.movements.List(c.Request().Context(), f, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) overview(c echo.Context) error {
	ov, err := h.inventory.Overview(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *InventoryHandler) products(c echo.Context) error {
	page, err := queryInt(c, "page", 1, badRequest)
	if err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit", 10, badRequest)
	if err != nil {
		return writeError(c, err)
	}
	low, err := queryBool(c, "low_stock")
	if err != nil {
		return writeError(c, err)
	}
	out, err := queryBool(c, "out_of_stock")
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.inventory.ListProducts(c.Request().Context(), usecase.ListInventoryInput{
		Page:       page,
		Limit:      limit,
		Category:   c.QueryParam("category"),
		LowStock:   low != nil && *low,
		OutOfStock: out != nil && *out,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) product(c echo.Context) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.inventory.Product(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *InventoryHandler) lowStock(c echo.Context) error {
	items, err := h.inventory.LowStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
