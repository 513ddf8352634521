package model

// 採番カウンタ（name単位で+1していく）
type Counter struct {
	Name string `gorm:"primaryKey;type:varchar(50)" json:"name"`
	Seq  int64  `gorm:"not null" json:"seq"`
}

func (Counter) TableName() string { return "counters" }

// カウンタ名
const (
	CounterPurchase = "purchase"
	CounterSale     = "sale"
	CounterReturn   = "return"
	CounterSupplier = "supplier"
	CounterProduct  = "product"
	CounterAlert    = "alert"
)
