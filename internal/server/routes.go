package server

import (
	"net/http"

	"inventory/internal/config"
	"inventory/internal/middleware"

	"github.com/labstack/echo/v4"
)

// 認証付きグループにぶら下げるハンドラ
type RouteRegistrar interface {
	RegisterRoutes(g *echo.Group)
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, handlers ...RouteRegistrar) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("", middleware.AuthJWT(cfg))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
}
