package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

func (r *SaleGormRepository) Create(ctx context.Context, s model.Sale) (model.Sale, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

func (r *SaleGormRepository) FindByID(ctx context.Context, id int64) (model.Sale, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *SaleGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Sale, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *SaleGormRepository) find(q *gorm.DB, id int64) (model.Sale, error) {
	var s model.Sale
	err := q.Preload("Lines", orderByID).First(&s, id).Error
	if isNotFound(err) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

func (r *SaleGormRepository) UpdatePaymentMethod(ctx context.Context, id int64, method model.PaymentMethod) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ?", id).
		Update("payment_method", method)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) List(ctx context.Context, f repo.SaleFilter) ([]model.Sale, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.PaymentMethod != nil {
			db = db.Where("payment_method = ?", *f.PaymentMethod)
		}
		return db.Scopes(dateRange("sale_date", f.From, f.To))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Sale{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Sale
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(f.Limit, f.Offset)).
		Preload("Lines", orderByID).
		Order("sale_date desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SaleGormRepository) LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error) {
	return lineProducts(r.db.WithContext(ctx), "sale_lines", "sale_id", id)
}
