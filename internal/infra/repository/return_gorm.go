package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

type ReturnGormRepository struct {
	db *gorm.DB
}

func NewReturnGormRepository(db *gorm.DB) *ReturnGormRepository {
	return &ReturnGormRepository{db: db}
}

func (r *ReturnGormRepository) Create(ctx context.Context, ret model.Return) (model.Return, error) {
	if err := r.db.WithContext(ctx).Create(&ret).Error; err != nil {
		return model.Return{}, err
	}
	return ret, nil
}

func (r *ReturnGormRepository) FindByID(ctx context.Context, id int64) (model.Return, error) {
	var ret model.Return
	err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&ret, id).Error
	if isNotFound(err) {
		return model.Return{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Return{}, err
	}
	return ret, nil
}

// 返品元に紐づく返品を古い順に
func (r *ReturnGormRepository) ListByReference(ctx context.Context, ref model.Reference) ([]model.Return, error) {
	var items []model.Return
	err := r.db.WithContext(ctx).
		Preload("Lines", orderByID).
		Where("reference_type = ? AND reference_id = ?", ref.Type, ref.ID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// 返品日の新しい順
func (r *ReturnGormRepository) List(ctx context.Context, f repo.ReturnFilter) ([]model.Return, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.ReferenceType != nil {
			db = db.Where("reference_type = ?", *f.ReferenceType)
		}
		if f.ProductID != nil {
			db = db.Where("EXISTS (SELECT 1 FROM return_lines AS rl WHERE rl.return_id = returns.id AND rl.product_id = ?)", *f.ProductID)
		}
		return db.Scopes(dateRange("return_date", f.From, f.To))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Return{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Return
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(f.Limit, f.Offset)).
		Preload("Lines", orderByID).
		Order("return_date desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ReturnGormRepository) LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error) {
	return lineProducts(r.db.WithContext(ctx), "return_lines", "return_id", id)
}

func (r *ReturnGormRepository) ReturnedQuantities(ctx context.Context, ref model.Reference) (map[int64]int64, error) {
	type row struct {
		ProductID int64
		Quantity  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("return_lines").
		Select("return_lines.product_id AS product_id, COALESCE(SUM(return_lines.quantity), 0) AS quantity").
		Joins("JOIN returns ON returns.id = return_lines.return_id").
		Where("returns.reference_type = ? AND returns.reference_id = ?", ref.Type, ref.ID).
		Group("return_lines.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(rows))
	for _, rw := range rows {
		out[rw.ProductID] = rw.Quantity
	}
	return out, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}
