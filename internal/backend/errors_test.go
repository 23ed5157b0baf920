package backend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarachom/accountingstore/internal/ident"
)

func TestStateError_Messages(t *testing.T) {
	id := ident.MustParse("0190a5e0-0000-7000-8000-000000000001")

	err := NewInvalidStateError("tab_b01", id)
	assert.Equal(t,
		"INVALID_STATE: attempt to write a nonexistent object (table=tab_b01, id=0190a5e0-0000-7000-8000-000000000001)",
		err.Error())

	assert.Equal(t, "NO_TRANSACTION: no active transaction (table=tab_a01)", NewNoTransactionError("tab_a01").Error())
	assert.Equal(t, "TRANSACTION_ACTIVE: transaction 3 already active", NewTransactionActiveError("", 3).Error())
}

func TestStateError_Predicates(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", NewInvalidStateError("tab_b01", ident.Empty))

	assert.True(t, IsInvalidState(wrapped))
	assert.False(t, IsNoTransaction(wrapped))
	assert.False(t, IsInvalidState(errors.New("plain")))
	assert.True(t, IsNoTransaction(NewNoTransactionError("t")))
	assert.True(t, IsTransactionActive(NewTransactionActiveError("t", 1)))
}

func TestStateError_MatchesSentinels(t *testing.T) {
	assert.ErrorIs(t, fmt.Errorf("save: %w", NewInvalidStateError("t", ident.Empty)), ErrInvalidState)
	assert.ErrorIs(t, NewNoTransactionError("t"), ErrNoTransaction)
	assert.ErrorIs(t, NewTransactionActiveError("t", 1), ErrTransactionActive)
	assert.NotErrorIs(t, NewTransactionActiveError("t", 1), ErrInvalidState)
	assert.ErrorIs(t, fmt.Errorf("begin: %w", NewWriterBusyError(2)), ErrWriterBusy)
}

func TestStateError_WriterBusy(t *testing.T) {
	err := NewWriterBusyError(7)

	assert.Equal(t, "WRITER_BUSY: transaction 7 holds the writer", err.Error())
	assert.True(t, IsWriterBusy(fmt.Errorf("save: %w", err)))
	assert.False(t, IsTransactionActive(err))
	assert.False(t, IsWriterBusy(NewTransactionActiveError("t", 7)))
}
