package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

type AlertGormRepository struct {
	db *gorm.DB
}

func NewAlertGormRepository(db *gorm.DB) *AlertGormRepository {
	return &AlertGormRepository{db: db}
}

func (r *AlertGormRepository) Create(ctx context.Context, a model.Alert) (model.Alert, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

func (r *AlertGormRepository) FindByID(ctx context.Context, id int64) (model.Alert, error) {
	var a model.Alert
	err := r.db.WithContext(ctx).First(&a, id).Error
	if isNotFound(err) {
		return model.Alert{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

func (r *AlertGormRepository) List(ctx context.Context, filter repo.AlertFilter) ([]model.Alert, error) {
	q := r.db.WithContext(ctx).Model(&model.Alert{})

	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.IsRead != nil {
		q = q.Where("is_read = ?", *filter.IsRead)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	//新しい順
	q = q.Order("id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var alerts []model.Alert
	if err := q.Limit(limit).Offset(offset).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *AlertGormRepository) MarkRead(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 未読をまとめて既読に。更新件数を返す。
func (r *AlertGormRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
