package repository

import (
	"context"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

// 在庫移動の元になる明細を読む。商品名は論理削除済みでも出す。
type MovementGormRepository struct {
	db *gorm.DB
}

func NewMovementGormRepository(db *gorm.DB) *MovementGormRepository {
	return &MovementGormRepository{db: db}
}

// 確定済みの仕入明細だけ
func (r *MovementGormRepository) PurchaseLines(ctx context.Context, q repo.MovementQuery) ([]repo.MovementRow, error) {
	tx := r.db.WithContext(ctx).
		Table("purchase_lines AS l").
		Select(`l.id AS line_id, h.code AS code, l.product_id AS product_id,
			COALESCE(p.name, '') AS product_name, l.quantity AS quantity, h.purchase_date AS moved_at`).
		Joins("JOIN purchases AS h ON h.id = l.purchase_id").
		Joins("LEFT JOIN products AS p ON p.id = l.product_id").
		Where("h.status = ?", model.PurchaseStatusConfirmed)
	return scanMovementRows(applyMovementQuery(tx, q, "h.purchase_date"))
}

func (r *MovementGormRepository) SaleLines(ctx context.Context, q repo.MovementQuery) ([]repo.MovementRow, error) {
	tx := r.db.WithContext(ctx).
		Table("sale_lines AS l").
		Select(`l.id AS line_id, h.code AS code, l.product_id AS product_id,
			COALESCE(p.name, '') AS product_name, l.quantity AS quantity, h.sale_date AS moved_at`).
		Joins("JOIN sales AS h ON h.id = l.sale_id").
		Joins("LEFT JOIN products AS p ON p.id = l.product_id")
	return scanMovementRows(applyMovementQuery(tx, q, "h.sale_date"))
}

// 返品明細。符号はreference_type/restockから呼び出し側で決める。
func (r *MovementGormRepository) ReturnLines(ctx context.Context, q repo.MovementQuery) ([]repo.MovementRow, error) {
	tx := r.db.WithContext(ctx).
		Table("return_lines AS l").
		Select(`l.id AS line_id, h.code AS code, l.product_id AS product_id,
			COALESCE(p.name, '') AS product_name, l.quantity AS quantity, h.return_date AS moved_at,
			h.reference_type AS reference_type, l.restock AS restock`).
		Joins("JOIN returns AS h ON h.id = l.return_id").
		Joins("LEFT JOIN products AS p ON p.id = l.product_id")
	return scanMovementRows(applyMovementQuery(tx, q, "h.return_date"))
}

func applyMovementQuery(tx *gorm.DB, q repo.MovementQuery, dateCol string) *gorm.DB {
	if q.ProductID != nil {
		tx = tx.Where("l.product_id = ?", *q.ProductID)
	}
	if q.From != nil {
		tx = tx.Where(dateCol+" >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where(dateCol+" <= ?", *q.To)
	}
	return tx
}

func scanMovementRows(tx *gorm.DB) ([]repo.MovementRow, error) {
	var rows []repo.MovementRow
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
