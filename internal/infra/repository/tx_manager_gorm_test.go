package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_RollbackOnError(t *testing.T) {
	gdb := newTestDB(t)
	p := seedProduct(t, gdb, "PRD-0001", 5, 1)
	tm := NewTxManagerGorm(gdb)

	boom := errors.New("boom")
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		if _, err := r.Inventory().Adjust(context.Background(), p.ID, 10); err != nil {
			return err
		}
		if _, err := r.Sequences().Next(context.Background(), model.CounterSale); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(5), stockOf(t, gdb, p.ID))

	//採番も戻っている
	n, err := NewSequenceGormRepository(gdb).Next(context.Background(), model.CounterSale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTxManager_Commit(t *testing.T) {
	gdb := newTestDB(t)
	p := seedProduct(t, gdb, "PRD-0001", 5, 1)
	tm := NewTxManagerGorm(gdb)

	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		_, err := r.Inventory().Adjust(context.Background(), p.ID, -2)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stockOf(t, gdb, p.ID))
}

func TestTxManager_CancelledContextDoesNotCommit(t *testing.T) {
	gdb := newTestDB(t)
	p := seedProduct(t, gdb, "PRD-0001", 5, 1)
	tm := NewTxManagerGorm(gdb)

	ctx, cancel := context.WithCancel(context.Background())
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Inventory().Adjust(ctx, p.ID, -2); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(5), stockOf(t, gdb, p.ID))
}

type fixedSequence struct{ n int64 }

func (s *fixedSequence) Next(ctx context.Context, name string) (int64, error) {
	s.n++
	return s.n, nil
}

func TestTxManager_SequenceOverride(t *testing.T) {
	gdb := newTestDB(t)
	seq := &fixedSequence{n: 41}
	tm := NewTxManagerGorm(gdb, WithSequenceAllocator(seq))

	var got int64
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		var err error
		got, err = r.Sequences().Next(context.Background(), model.CounterSale)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestTranslateTxError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateTxError(tc.err)
			assert.Equal(t, tc.conflict, errors.Is(got, repo.ErrConflict))
			assert.ErrorIs(t, got, tc.err)
		})
	}
	assert.NoError(t, translateTxError(nil))
}
