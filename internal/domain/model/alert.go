package model

import "time"

// アラートの種類
type AlertType string

const (
	//在庫がしきい値以下になった
	AlertLowStock AlertType = "LowStock"
	//返品が登録された
	AlertReturn AlertType = "Return"
)

// アラート。書き込み系の同じトランザクション内で作る。
type Alert struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code    string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Seq     int64     `gorm:"not null;uniqueIndex" json:"seq"`
	Type    AlertType `gorm:"type:varchar(20);not null;index" json:"type"`
	Message string    `gorm:"type:text;not null" json:"message"`

	//LowStockなら商品ID
	ProductID *int64 `gorm:"index" json:"product_id,omitempty"`

	//Returnなら返品ID
	RelatedID *int64 `json:"related_id,omitempty"`

	IsRead    bool      `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
