package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 在庫ステータス
type StockStatus string

const (
	StockStatusOK  StockStatus = "OK"
	StockStatusLow StockStatus = "LOW"
	StockStatusOut StockStatus = "OUT"
)

// 商品。stockはInventoryRepository.Adjust経由でしか変えない。
type Product struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Category          string          `gorm:"type:varchar(100);index" json:"category"`
	Brand             string          `gorm:"type:varchar(100)" json:"brand"`
	CostPrice         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"cost_price"`
	SellingPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"selling_price"`
	Stock             int64           `gorm:"not null;check:chk_products_stock,stock >= 0" json:"stock"`
	LowStockThreshold int64           `gorm:"not null" json:"low_stock_threshold"`
	IsActive          bool            `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Status は在庫数としきい値から OK / LOW / OUT を返す。
func (p Product) Status() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockStatusOut
	case p.Stock <= p.LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// 仕入先
type Supplier struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(30);not null" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
