package usecase

import (
	"errors"
	"fmt"
)

// エラーの分類。handlerでHTTPステータスに変換する。
type ErrorKind string

const (
	KindInput         ErrorKind = "InputError"
	KindReference     ErrorKind = "ReferenceError"
	KindStateConflict ErrorKind = "StateConflictError"
	KindConcurrency   ErrorKind = "ConcurrencyConflict"
	KindPersistence   ErrorKind = "PersistenceFailure"
)

const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeSupplierNotFound  = "SUPPLIER_NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidLine       = "INVALID_LINE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeExceedsOriginal   = "EXCEEDS_ORIGINAL"
	CodeNotReturnable     = "NOT_RETURNABLE"
	CodeWindowExpired     = "WINDOW_EXPIRED"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeAlreadyConfirmed  = "ALREADY_CONFIRMED"
	CodeConflict          = "CONFLICT"
	CodePersistence       = "PERSISTENCE"
)

// AppError はusecaseが返すエラー。
// Lineは明細の1始まりの番号（0なら明細に紐づかない）。
type AppError struct {
	Kind      ErrorKind
	Code      string
	Message   string
	ProductID int64
	Line      int

	// 元のエラー（ログ用、レスポンスには出さない）
	Err error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// 明細番号と商品IDを付ける
func (e *AppError) at(line int, productID int64) *AppError {
	e.Line = line
	e.ProductID = productID
	return e
}

func invalidInput(format string, args ...any) *AppError {
	return NewAppError(KindInput, CodeInvalidInput, fmt.Sprintf(format, args...))
}

func invalidFilter(format string, args ...any) *AppError {
	return NewAppError(KindInput, CodeInvalidFilter, fmt.Sprintf(format, args...))
}

func productNotFound(line int, productID int64) *AppError {
	return NewAppError(KindReference, CodeProductNotFound,
		fmt.Sprintf("product %d not found", productID)).at(line, productID)
}

func persistence(err error) *AppError {
	return &AppError{Kind: KindPersistence, Code: CodePersistence, Message: "storage failure", Err: err}
}
