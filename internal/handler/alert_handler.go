package handler

import (
	"net/http"

	"inventory/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AlertHandler struct {
	uc *usecase.AlertUsecase
}

func NewAlertHandler(uc *usecase.AlertUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

func (h *AlertHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/alerts", h.list)
	g.GET("/alerts/:id", h.get)
	g.PATCH("/alerts/read-all", h.markAllRead)
	g.PATCH("/alerts/:id/read", h.markRead)
}

func (h *AlertHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1, badRequest)
	if err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit", 50, badRequest)
	if err != nil {
		return writeError(c, err)
	}
	isRead, err := queryBool(c, "is_read")
	if err != nil {
		return writeError(c, err)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListAlertsInput{
		Type:   c.QueryParam("type"),
		IsRead: isRead,
		From:   from,
		To:     to,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AlertHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AlertHandler) markRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.MarkRead(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AlertHandler) markAllRead(c echo.Context) error {
	n, err := h.uc.MarkAllRead(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}
