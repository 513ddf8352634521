package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"inventory/internal/config"
	"inventory/internal/handler"
	"inventory/internal/infra/db"
	infraRepo "inventory/internal/infra/repository"
	"inventory/internal/middleware"
	"inventory/internal/server"
	"inventory/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

// sqliteで全ハンドラを組み立てたecho
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{JWTSecret: testSecret}
	log := config.DiscardLogger()
	clock := usecase.SystemClock()
	policy := usecase.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond}
	tm := infraRepo.NewTxManagerGorm(gdb)
	movements := usecase.NewMovementUsecase(infraRepo.NewMovementGormRepository(gdb))

	return server.New(cfg, log,
		handler.NewCatalogHandler(usecase.NewCatalogUsecase(tm, clock, policy, log)),
		handler.NewPurchaseHandler(usecase.NewPurchaseUsecase(tm, infraRepo.NewPurchaseGormRepository(gdb), clock, policy, log)),
		handler.NewSaleHandler(usecase.NewSaleUsecase(tm, infraRepo.NewSaleGormRepository(gdb), clock, policy, log)),
		handler.NewReturnHandler(usecase.NewReturnUsecase(tm, infraRepo.NewReturnGormRepository(gdb), clock, policy, log)),
		handler.NewInventoryHandler(usecase.NewInventoryUsecase(infraRepo.NewProductGormRepository(gdb), movements), movements),
		handler.NewAlertHandler(usecase.NewAlertUsecase(infraRepo.NewAlertGormRepository(gdb))),
	)
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  1,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, e *echo.Echo, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tokenFor(t, role))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type idResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// 商品を作ってIDを返す（Manager）
func createProduct(t *testing.T, e *echo.Echo, name string, stock, threshold int64) int64 {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/products", middleware.RoleManager, map[string]any{
		"name":                name,
		"category":            "stationery",
		"cost_price":          "2.00",
		"selling_price":       "5.00",
		"stock":               stock,
		"low_stock_threshold": threshold,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResponse](t, rec).ID
}

func createSupplier(t *testing.T, e *echo.Echo) int64 {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/suppliers", middleware.RoleAdmin, map[string]any{
		"name":  "acme",
		"phone": "0123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResponse](t, rec).ID
}
