package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

type AlertUsecase struct {
	alerts repo.AlertRepository
}

func NewAlertUsecase(alerts repo.AlertRepository) *AlertUsecase {
	return &AlertUsecase{alerts: alerts}
}

type ListAlertsInput struct {
	Type   string
	IsRead *bool
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type AlertListOutput struct {
	Items []model.Alert `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *AlertUsecase) List(ctx context.Context, in ListAlertsInput) (AlertListOutput, error) {
	if in.Page < 1 {
		return AlertListOutput{}, invalidInput("invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AlertListOutput{}, invalidInput("invalid limit")
	}
	from, to, err := utcRange(in.From, in.To)
	if err != nil {
		return AlertListOutput{}, err
	}

	f := repo.AlertFilter{
		IsRead:      in.IsRead,
		CreatedFrom: from,
		CreatedTo:   to,
		Limit:       in.Limit,
		Offset:      (in.Page - 1) * in.Limit,
	}
	if in.Type != "" {
		t := model.AlertType(in.Type)
		if t != model.AlertLowStock && t != model.AlertReturn {
			return AlertListOutput{}, invalidFilter("type must be LowStock or Return")
		}
		f.Type = &t
	}

	items, err := u.alerts.List(ctx, f)
	if err != nil {
		return AlertListOutput{}, persistence(err)
	}
	if items == nil {
		items = []model.Alert{}
	}
	return AlertListOutput{Items: items, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AlertUsecase) Get(ctx context.Context, id int64) (model.Alert, error) {
	if id <= 0 {
		return model.Alert{}, invalidInput("invalid alert id")
	}
	a, err := u.alerts.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Alert{}, alertNotFound(id)
	}
	if err != nil {
		return model.Alert{}, persistence(err)
	}
	return a, nil
}

func (u *AlertUsecase) MarkRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidInput("invalid alert id")
	}
	err := u.alerts.MarkRead(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return alertNotFound(id)
	}
	if err != nil {
		return persistence(err)
	}
	return nil
}

// 既読にした件数を返す
func (u *AlertUsecase) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := u.alerts.MarkAllRead(ctx)
	if err != nil {
		return 0, persistence(err)
	}
	return n, nil
}

func alertNotFound(id int64) *AppError {
	return NewAppError(KindReference, CodeNotFound, fmt.Sprintf("alert %d not found", id))
}
