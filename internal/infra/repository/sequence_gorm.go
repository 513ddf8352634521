package repository

import (
	"context"
	"fmt"

	"inventory/internal/domain/model"

	"gorm.io/gorm"
)

// countersテーブルで採番する。行ロックが取れるのでTx内で呼べば重複しない。
type SequenceGormRepository struct {
	db *gorm.DB
}

func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

const nextSeqSQL = `INSERT INTO counters (name, seq) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
RETURNING seq`

func (r *SequenceGormRepository) Next(ctx context.Context, name string) (int64, error) {
	var seq int64
	if err := r.db.WithContext(ctx).Raw(nextSeqSQL, name).Scan(&seq).Error; err != nil {
		return 0, err
	}
	if seq <= 0 {
		return 0, fmt.Errorf("counter %q: no sequence returned", name)
	}
	return seq, nil
}

// seqカラムを持つテーブル。countersより先に進んでいることがある（redis採番中はcountersが動かない）。
var seqTables = map[string]string{
	model.CounterPurchase: "purchases",
	model.CounterSale:     "sales",
	model.CounterReturn:   "returns",
	model.CounterAlert:    "alerts",
}

// Snapshot はカウンタ名ごとの払い出し済み最大値を返す。
// 採番先をredisに切り替えるときの下限に使う。
func (r *SequenceGormRepository) Snapshot(ctx context.Context) (map[string]int64, error) {
	var counters []model.Counter
	if err := r.db.WithContext(ctx).Find(&counters).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counters)+len(seqTables))
	for _, c := range counters {
		out[c.Name] = c.Seq
	}

	for name, table := range seqTables {
		var maxSeq int64
		if err := r.db.WithContext(ctx).Table(table).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return nil, fmt.Errorf("max seq of %s: %w", table, err)
		}
		out[name] = max(out[name], maxSeq)
	}
	return out, nil
}
