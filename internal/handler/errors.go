package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inventory/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
	Line      int    `json:"line,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	ae, ok := usecase.AsAppError(err)
	if !ok {
		//500
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: usecase.CodePersistence})
	}

	res := ErrorResponse{
		Error:     ae.Message,
		Code:      ae.Code,
		ProductID: ae.ProductID,
		Line:      ae.Line,
	}
	switch ae.Kind {
	case usecase.KindInput:
		return c.JSON(http.StatusBadRequest, res)
	case usecase.KindReference:
		return c.JSON(http.StatusNotFound, res)
	case usecase.KindStateConflict:
		return c.JSON(http.StatusConflict, res)
	case usecase.KindConcurrency:
		res.Retryable = true
		return c.JSON(http.StatusConflict, res)
	default:
		//中身は返さない
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: ae.Code})
	}
}

func badRequest(msg string) error {
	return usecase.NewAppError(usecase.KindInput, usecase.CodeInvalidInput, msg)
}

func badFilter(msg string) error {
	return usecase.NewAppError(usecase.KindInput, usecase.CodeInvalidFilter, msg)
}

// bodyをbindしてvalidateタグを検証する。最初に落ちた項目名を返す。
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return badRequest(fmt.Sprintf("%s: failed on %s", fieldPath(fe.Namespace()), fe.Tag()))
		}
		return badRequest(err.Error())
	}
	return nil
}

// "createSaleRequest.lines[0].quantity" -> "lines[0].quantity"
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}

// クエリの整数。空ならdef。
func queryInt(c echo.Context, name string, def int, mkErr func(string) error) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, mkErr("invalid " + name)
	}
	return n, nil
}

// 任意のID絞り込み
func queryID(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, badFilter("invalid " + name)
	}
	return &id, nil
}

// page / limit。一覧はどれも同じ名前で受ける。
func queryPaging(c echo.Context, defLimit int) (page, limit int, err error) {
	if page, err = queryInt(c, "page", 1, badFilter); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit", defLimit, badFilter); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// from / to
func queryRange(c echo.Context) (from, to *time.Time, err error) {
	if from, err = queryTime(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(c, "to", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, badFilter("invalid " + name)
	}
	return &b, nil
}

// RFC3339 か YYYY-MM-DD。日付だけのtoはその日の終わりまで含める。
func queryTime(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, badFilter("invalid " + name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
