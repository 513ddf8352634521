package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

// ヘッダと明細を1回で作る（明細はassociationで一緒にINSERT）
func (r *PurchaseGormRepository) Create(ctx context.Context, p model.Purchase) (model.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Purchase{}, err
	}
	return p, nil
}

func (r *PurchaseGormRepository) FindByID(ctx context.Context, id int64) (model.Purchase, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// 返品の直列化用。postgresではFOR UPDATE、sqliteは接続1本なので不要。
func (r *PurchaseGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Purchase, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *PurchaseGormRepository) find(q *gorm.DB, id int64) (model.Purchase, error) {
	var p model.Purchase
	err := q.Preload("Lines", orderByID).First(&p, id).Error
	if isNotFound(err) {
		return model.Purchase{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Purchase{}, err
	}
	return p, nil
}

func (r *PurchaseGormRepository) List(ctx context.Context, f repo.PurchaseFilter) ([]model.Purchase, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if f.SupplierID != nil {
			db = db.Where("supplier_id = ?", *f.SupplierID)
		}
		return db.Scopes(dateRange("purchase_date", f.From, f.To))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Purchase
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(f.Limit, f.Offset)).
		Preload("Lines", orderByID).
		Order("purchase_date desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PurchaseGormRepository) LineProducts(ctx context.Context, id int64) ([]model.LineProduct, error) {
	return lineProducts(r.db.WithContext(ctx), "purchase_lines", "purchase_id", id)
}

// draftのときだけconfirmedにする
func (r *PurchaseGormRepository) Confirm(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND status = ?", id, model.PurchaseStatusDraft).
		Update("status", model.PurchaseStatusConfirmed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	//0件: 存在しないのか、既にconfirmedなのか
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrAlreadyConfirmed
}
