package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// アラートの絞り込み条件。
type AlertFilter struct {
	Type        *model.AlertType
	IsRead      *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

type AlertRepository interface {
	Create(ctx context.Context, a model.Alert) (model.Alert, error)
	FindByID(ctx context.Context, id int64) (model.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]model.Alert, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
}
