package repository

import (
	"context"
	"errors"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫にdeltaを足す。結果が0未満になる行は更新しない（条件付きUPDATE）。
// 同じ商品への同時更新は行ロックで直列化される。
func (r *InventoryGormRepository) Adjust(ctx context.Context, productID int64, delta int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}

	var p model.Product
	err := r.db.WithContext(ctx).Select("id", "stock").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	// 更新されなかった＝在庫不足
	if res.RowsAffected == 0 {
		return p.Stock, &repo.StockShortageError{
			ProductID: productID,
			Available: p.Stock,
			Requested: -delta,
		}
	}
	return p.Stock, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
