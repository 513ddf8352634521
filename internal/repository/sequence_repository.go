package repository

import "context"

// name単位の連番を払い出す。同時に呼ばれても重複しない。
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
}
