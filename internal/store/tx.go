package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarachom/accountingstore/internal/backend"
)

// execer is the subset shared by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction registered under tx, or the database
// itself for NoTx.
func (s *Store) conn(tx backend.TxID) (execer, error) {
	if !tx.Active() {
		return s.db, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sqlTx, ok := s.txs[tx]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownTx, tx)
	}
	return sqlTx, nil
}

// writeConn is conn for mutating statements. A standalone write while
// another slot holds the writer fails at once instead of waiting out the
// busy timeout.
func (s *Store) writeConn(tx backend.TxID) (execer, error) {
	if !tx.Active() {
		s.mu.Lock()
		holder := s.writer
		s.mu.Unlock()
		if holder.Active() {
			return nil, backend.NewWriterBusyError(holder)
		}
	}
	return s.conn(tx)
}

// take removes tx from the registry and releases the writer.
func (s *Store) take(tx backend.TxID) (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sqlTx, ok := s.txs[tx]
	if !ok {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownTx, tx)
	}
	delete(s.txs, tx)
	if s.writer == tx {
		s.writer = backend.NoTx
	}
	return sqlTx, nil
}

// BeginTransaction opens a transaction and returns its slot value.
// Every transaction takes the SQLite write lock at BEGIN, so only one slot
// is open at a time; a second begin fails with a WriterBusy
// *backend.StateError. The slot outlives the call, so cancelling ctx
// afterwards does not roll it back.
func (s *Store) BeginTransaction(ctx context.Context) (backend.TxID, error) {
	id := backend.TxID(s.nextTx.Add(1))

	s.mu.Lock()
	if s.writer.Active() {
		holder := s.writer
		s.mu.Unlock()
		return backend.NoTx, fmt.Errorf("begin transaction: %w", backend.NewWriterBusyError(holder))
	}
	s.writer = id
	s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		s.mu.Lock()
		s.writer = backend.NoTx
		s.mu.Unlock()
		return backend.NoTx, fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.Lock()
	s.txs[id] = sqlTx
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "begin transaction", "tx", id)
	return id, nil
}

// CommitTransaction commits and releases the slot.
func (s *Store) CommitTransaction(ctx context.Context, tx backend.TxID) error {
	sqlTx, err := s.take(tx)
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction %d: %w", tx, err)
	}
	s.logger.DebugContext(ctx, "commit transaction", "tx", tx)
	return nil
}

// RollbackTransaction rolls back and releases the slot.
func (s *Store) RollbackTransaction(ctx context.Context, tx backend.TxID) error {
	sqlTx, err := s.take(tx)
	if err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	if err := sqlTx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction %d: %w", tx, err)
	}
	s.logger.DebugContext(ctx, "rollback transaction", "tx", tx)
	return nil
}

// OpenTransactions returns the number of registered transactions.
func (s *Store) OpenTransactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}
