package model

import (
	"fmt"
	"time"
)

// 返品元の種類
type ReferenceType string

const (
	ReferenceSale     ReferenceType = "Sale"
	ReferencePurchase ReferenceType = "Purchase"
)

func ParseReferenceType(s string) (ReferenceType, error) {
	switch ReferenceType(s) {
	case ReferenceSale, ReferencePurchase:
		return ReferenceType(s), nil
	}
	return "", fmt.Errorf("invalid reference type %q", s)
}

// Reference は Sale(id) | Purchase(id) のどちらか。
type Reference struct {
	Type ReferenceType
	ID   int64
}

func SaleRef(id int64) Reference     { return Reference{Type: ReferenceSale, ID: id} }
func PurchaseRef(id int64) Reference { return Reference{Type: ReferencePurchase, ID: id} }

func (r Reference) String() string {
	return fmt.Sprintf("%s(%d)", r.Type, r.ID)
}

// 返品ヘッダ
type Return struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string        `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Seq           int64         `gorm:"not null;uniqueIndex" json:"seq"`
	ReferenceType ReferenceType `gorm:"type:varchar(20);not null;index:idx_returns_reference" json:"reference_type"`
	ReferenceID   int64         `gorm:"not null;index:idx_returns_reference" json:"reference_id"`
	ReturnDate    time.Time     `gorm:"not null;index" json:"return_date"`
	Lines         []ReturnLine  `gorm:"foreignKey:ReturnID" json:"lines"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (r Return) Reference() Reference {
	return Reference{Type: r.ReferenceType, ID: r.ReferenceID}
}

type ReturnLine struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReturnID  int64  `gorm:"not null;index" json:"return_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
	Restock   bool   `gorm:"not null" json:"restock"`
	Reason    string `gorm:"type:varchar(255)" json:"reason"`
}

// StockDelta は返品明細が在庫に与える増減。
// Sale+restock => +qty / Purchase+!restock => -qty / それ以外は0。
func StockDelta(ref ReferenceType, restock bool, qty int64) int64 {
	switch {
	case ref == ReferenceSale && restock:
		return qty
	case ref == ReferencePurchase && !restock:
		return -qty
	default:
		return 0
	}
}
