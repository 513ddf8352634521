package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusDraft     PurchaseStatus = "draft"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
)

const (
	DefaultReturnWindowDays = 7
)

// 仕入ヘッダ。confirmedになった時点で在庫に反映済み。
type Purchase struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Seq           int64           `gorm:"not null;uniqueIndex" json:"seq"`
	SupplierID    int64           `gorm:"not null;index" json:"supplier_id"`
	InvoiceNumber string          `gorm:"type:varchar(100)" json:"invoice_number"`
	PurchaseDate  time.Time       `gorm:"not null;index" json:"purchase_date"`
	Status        PurchaseStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Lines         []PurchaseLine  `gorm:"foreignKey:PurchaseID" json:"lines"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 仕入明細。returnable / return_window_days は返品判定で使う。
type PurchaseLine struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseID       int64           `gorm:"not null;index" json:"purchase_id"`
	ProductID        int64           `gorm:"not null;index" json:"product_id"`
	Quantity         int64           `gorm:"not null" json:"quantity"`
	UnitCost         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_cost"`
	LineTotal        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"line_total"`
	Returnable       bool            `gorm:"not null" json:"returnable"`
	ReturnWindowDays int             `gorm:"not null" json:"return_window_days"`
}

// ReturnDeadline は返品受付の期限（purchase_date + return_window_days）。
func (l PurchaseLine) ReturnDeadline(purchaseDate time.Time) time.Time {
	return purchaseDate.AddDate(0, 0, l.ReturnWindowDays)
}
