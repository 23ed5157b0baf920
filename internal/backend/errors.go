package backend

import (
	"errors"
	"fmt"

	"github.com/tarachom/accountingstore/internal/ident"
)

// Sentinel errors shared by backends and components.
var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownTx       = errors.New("unknown transaction")
	ErrInvalidPageSize = errors.New("page size must be positive")

	// StateError codes match these with errors.Is.
	ErrInvalidState      = errors.New("invalid state")
	ErrNoTransaction     = errors.New("no active transaction")
	ErrTransactionActive = errors.New("transaction already active")
	ErrWriterBusy        = errors.New("writer busy")
)

// StateErrorCode categorizes state errors.
type StateErrorCode string

const (
	// ErrCodeInvalidState indicates a write to a row that no longer exists.
	ErrCodeInvalidState StateErrorCode = "INVALID_STATE"

	// ErrCodeNoTransaction indicates commit or rollback without a slot.
	ErrCodeNoTransaction StateErrorCode = "NO_TRANSACTION"

	// ErrCodeTransactionActive indicates a begin while a slot is held.
	ErrCodeTransactionActive StateErrorCode = "TRANSACTION_ACTIVE"

	// ErrCodeWriterBusy indicates a write or begin while another slot holds
	// the backend's single writer.
	ErrCodeWriterBusy StateErrorCode = "WRITER_BUSY"
)

// StateError reports an operation that the component's current state does
// not allow. It is surfaced immediately and never retried.
type StateError struct {
	Code    StateErrorCode
	Message string
	Table   string
	ID      ident.UniqueID
}

// Error implements the error interface.
func (e *StateError) Error() string {
	if e.Table != "" && !e.ID.IsEmpty() {
		return fmt.Sprintf("%s: %s (table=%s, id=%s)", e.Code, e.Message, e.Table, e.ID)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches the sentinel of the error's code.
func (e *StateError) Is(target error) bool {
	switch e.Code {
	case ErrCodeInvalidState:
		return target == ErrInvalidState
	case ErrCodeNoTransaction:
		return target == ErrNoTransaction
	case ErrCodeTransactionActive:
		return target == ErrTransactionActive
	case ErrCodeWriterBusy:
		return target == ErrWriterBusy
	}
	return false
}

// NewInvalidStateError creates the error returned when an update finds no
// row to write.
func NewInvalidStateError(table string, id ident.UniqueID) *StateError {
	return &StateError{
		Code:    ErrCodeInvalidState,
		Message: "attempt to write a nonexistent object",
		Table:   table,
		ID:      id,
	}
}

// NewNoTransactionError creates the error returned by commit or rollback
// on an empty slot.
func NewNoTransactionError(table string) *StateError {
	return &StateError{
		Code:    ErrCodeNoTransaction,
		Message: "no active transaction",
		Table:   table,
	}
}

// NewTransactionActiveError creates the error returned by a begin while a
// slot is held.
func NewTransactionActiveError(table string, tx TxID) *StateError {
	return &StateError{
		Code:    ErrCodeTransactionActive,
		Message: fmt.Sprintf("transaction %d already active", tx),
		Table:   table,
	}
}

// NewWriterBusyError creates the error returned when a write or begin is
// issued outside holder while holder keeps the writer.
func NewWriterBusyError(holder TxID) *StateError {
	return &StateError{
		Code:    ErrCodeWriterBusy,
		Message: fmt.Sprintf("transaction %d holds the writer", holder),
	}
}

func hasCode(err error, code StateErrorCode) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsInvalidState returns true if the error is an invalid state error.
// Uses errors.As to handle wrapped errors.
func IsInvalidState(err error) bool {
	return hasCode(err, ErrCodeInvalidState)
}

// IsNoTransaction returns true if the error is a missing transaction error.
func IsNoTransaction(err error) bool {
	return hasCode(err, ErrCodeNoTransaction)
}

// IsTransactionActive returns true if the error is a nested begin error.
func IsTransactionActive(err error) bool {
	return hasCode(err, ErrCodeTransactionActive)
}

// IsWriterBusy returns true if the error reports a held writer.
func IsWriterBusy(err error) bool {
	return hasCode(err, ErrCodeWriterBusy)
}
