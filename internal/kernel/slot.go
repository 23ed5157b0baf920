package kernel

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarachom/accountingstore/internal/backend"
)

// Slot is the single transaction slot of one component instance.
//
// Thread-safety: not safe for concurrent use, like the component owning it.
type Slot struct {
	backend backend.Backend
	table   string
	tx      backend.TxID
}

// NewSlot creates an empty slot for the component bound to table.
func NewSlot(b backend.Backend, table string) *Slot {
	return &Slot{backend: b, table: table}
}

// Tx returns the current slot value, NoTx when no transaction is open.
func (s *Slot) Tx() backend.TxID {
	return s.tx
}

// Begin opens a transaction. Fails while one is already open.
func (s *Slot) Begin(ctx context.Context) error {
	if s.tx.Active() {
		return backend.NewTransactionActiveError(s.table, s.tx)
	}
	tx, err := s.backend.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction and empties the slot.
func (s *Slot) Commit(ctx context.Context) error {
	if !s.tx.Active() {
		return backend.NewNoTransactionError(s.table)
	}
	tx := s.tx
	s.tx = backend.NoTx
	return s.backend.CommitTransaction(ctx, tx)
}

// Rollback rolls back the open transaction and empties the slot.
func (s *Slot) Rollback(ctx context.Context) error {
	if !s.tx.Active() {
		return backend.NewNoTransactionError(s.table)
	}
	tx := s.tx
	s.tx = backend.NoTx
	return s.backend.RollbackTransaction(ctx, tx)
}

// Run opens a transaction, runs fn and commits. When fn fails or panics
// the transaction is rolled back and the slot emptied before the error is
// returned or the panic continues.
func (s *Slot) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := s.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = s.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := s.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	return s.Commit(ctx)
}
