package model

import "time"

type MovementType string

const (
	MovementPurchase MovementType = "Purchase"
	MovementSale     MovementType = "Sale"
	MovementReturn   MovementType = "Return"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturn:
		return true
	}
	return false
}

// 在庫移動。purchase/sale/returnの明細から組み立てる（保存はしない）。
type Movement struct {
	Type        MovementType `json:"type"`
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product"`
	Quantity    int64        `json:"quantity"`
	Date        time.Time    `json:"date"`
	Code        string       `json:"code"`
	LineID      int64        `json:"-"`
}
