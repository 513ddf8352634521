package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	Suppliers() SupplierRepository
	Inventory() InventoryRepository
	Purchases() PurchaseRepository
	Sales() SaleRepository
	Returns() ReturnRepository
	Sequences() SequenceAllocator
	Alerts() AlertRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがnilを返せばcommit、errorかpanicならrollback。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
