package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/backend"
)

// txBackend records transaction calls.
type txBackend struct {
	backend.Backend
	next      backend.TxID
	committed []backend.TxID
	rolled    []backend.TxID
}

func (b *txBackend) BeginTransaction(context.Context) (backend.TxID, error) {
	b.next++
	return b.next, nil
}

func (b *txBackend) CommitTransaction(_ context.Context, tx backend.TxID) error {
	b.committed = append(b.committed, tx)
	return nil
}

func (b *txBackend) RollbackTransaction(_ context.Context, tx backend.TxID) error {
	b.rolled = append(b.rolled, tx)
	return nil
}

func TestSlot_BeginCommit(t *testing.T) {
	ctx := context.Background()
	b := &txBackend{}
	s := NewSlot(b, "tab_a01")

	assert.Equal(t, backend.NoTx, s.Tx())
	require.NoError(t, s.Begin(ctx))
	assert.Equal(t, backend.TxID(1), s.Tx())

	err := s.Begin(ctx)
	assert.True(t, backend.IsTransactionActive(err))
	assert.Equal(t, backend.TxID(1), s.Tx(), "failed begin keeps the open slot")

	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, backend.NoTx, s.Tx())
	assert.Equal(t, []backend.TxID{1}, b.committed)
}

func TestSlot_CommitWithoutBegin(t *testing.T) {
	s := NewSlot(&txBackend{}, "tab_a01")
	assert.True(t, backend.IsNoTransaction(s.Commit(context.Background())))
	assert.True(t, backend.IsNoTransaction(s.Rollback(context.Background())))
}

func TestSlot_RunCommitsOnSuccess(t *testing.T) {
	b := &txBackend{}
	s := NewSlot(b, "tab_a01")

	var seen backend.TxID
	err := s.Run(context.Background(), func(context.Context) error {
		seen = s.Tx()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, backend.TxID(1), seen)
	assert.Equal(t, backend.NoTx, s.Tx())
	assert.Equal(t, []backend.TxID{1}, b.committed)
	assert.Empty(t, b.rolled)
}

func TestSlot_RunRollsBackOnError(t *testing.T) {
	b := &txBackend{}
	s := NewSlot(b, "tab_a01")
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, backend.NoTx, s.Tx())
	assert.Equal(t, []backend.TxID{1}, b.rolled)
	assert.Empty(t, b.committed)
}

func TestSlot_RunRollsBackOnPanic(t *testing.T) {
	b := &txBackend{}
	s := NewSlot(b, "tab_a01")

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.Run(context.Background(), func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, backend.NoTx, s.Tx())
	assert.Equal(t, []backend.TxID{1}, b.rolled)
}
