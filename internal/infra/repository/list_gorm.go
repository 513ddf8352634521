package repository

import (
	"time"

	"inventory/internal/domain/model"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// 日付カラムの範囲。境界はUTCで渡す（sqliteは文字列比較）。
func dateRange(col string, from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(col+" >= ?", from.UTC())
		}
		if to != nil {
			db = db.Where(col+" <= ?", to.UTC())
		}
		return db
	}
}

func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}

// 明細と商品をつなぐ。論理削除された商品も名前は出す。
func lineProducts(db *gorm.DB, table, fk string, id int64) ([]model.LineProduct, error) {
	var out []model.LineProduct
	err := db.Table(table+" AS l").
		Select(`l.id AS line_id, l.product_id AS product_id,
			COALESCE(p.code, '') AS product_code, COALESCE(p.name, '') AS product_name, l.quantity AS quantity`).
		Joins("LEFT JOIN products AS p ON p.id = l.product_id").
		Where("l."+fk+" = ?", id).
		Order("l.id asc").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
