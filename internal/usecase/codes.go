package usecase

import "fmt"

// コードのprefix
const (
	PrefixPurchase = "PUR"
	PrefixSale     = "SAL"
	PrefixReturn   = "RET"
	PrefixSupplier = "SUP"
	PrefixProduct  = "PRD"
	PrefixAlert    = "ALT"
)

// FormatCode は PUR-0007 の形にする。4桁を超えても切り詰めない。
func FormatCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
