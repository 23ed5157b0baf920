package backend

import (
	"context"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
)

// Backend is the storage contract consumed by the persistence components.
//
// Implementations must be safe for use by several component instances at
// once. Failures are returned unmodified in kind; callers add no retries.
//
// Reads take the caller's slot too: under an open transaction they see
// that transaction's own uncommitted writes, with NoTx they see committed
// state.
type Backend interface {
	// SelectConstantsTablePartRecords executes q against a table part.
	SelectConstantsTablePartRecords(ctx context.Context, tx TxID, q query.Query) (field.RowSet, field.JoinMap, error)
	// InsertConstantsTablePartRecords inserts or replaces the row with id.
	InsertConstantsTablePartRecords(ctx context.Context, tx TxID, id ident.UniqueID, table string, row field.Row) error
	// RemoveConstantsTablePartRecords deletes the row with id.
	RemoveConstantsTablePartRecords(ctx context.Context, tx TxID, id ident.UniqueID, table string) error
	// DeleteConstantsTablePartRecords deletes every row of the table.
	DeleteConstantsTablePartRecords(ctx context.Context, tx TxID, table string) error

	// SelectRegisterInformationObject returns nil, nil when the row is absent.
	SelectRegisterInformationObject(ctx context.Context, tx TxID, id ident.UniqueID, table string, fields []string) (*RegisterRecord, error)
	// InsertRegisterInformationObject reports whether a row was written.
	// It runs under rec.Tx.
	InsertRegisterInformationObject(ctx context.Context, rec RegisterRecord) (bool, error)
	// UpdateRegisterInformationObject updates the row only if it exists and
	// reports false when no row matched. It runs under rec.Tx.
	UpdateRegisterInformationObject(ctx context.Context, rec RegisterRecord) (bool, error)
	// DeleteRegisterInformationObject deletes the row with id.
	DeleteRegisterInformationObject(ctx context.Context, tx TxID, table string, id ident.UniqueID) error

	// SelectRegisterInformationRecords executes q against a record set.
	SelectRegisterInformationRecords(ctx context.Context, tx TxID, q query.Query) (field.RowSet, field.JoinMap, error)
	// InsertRegisterInformationRecords inserts one record.
	InsertRegisterInformationRecords(ctx context.Context, tx TxID, rec RegisterRecord) error
	// RemoveRegisterInformationRecords deletes the record with id.
	RemoveRegisterInformationRecords(ctx context.Context, tx TxID, id ident.UniqueID, table string) error
	// DeleteRegisterInformationRecords deletes every record of owner.
	DeleteRegisterInformationRecords(ctx context.Context, tx TxID, table string, owner ident.UniqueID) error

	// SplitSelectToPages counts the rows matched by q and locates target,
	// which may be Empty.
	SplitSelectToPages(ctx context.Context, tx TxID, q query.Query, target ident.UniqueID, pageSize int) (PageSplit, error)

	// SelectJournalDocumentPointer lists document headers across tables.
	SelectJournalDocumentPointer(ctx context.Context, f JournalFilter) ([]DocumentPointer, error)

	// IsExistUniqueID reports whether table holds a row with id.
	IsExistUniqueID(ctx context.Context, tx TxID, id ident.UniqueID, table string) (bool, error)

	// BeginTransaction opens a transaction. A backend with a single writer
	// fails with a WriterBusy *StateError while another slot holds it.
	BeginTransaction(ctx context.Context) (TxID, error)
	CommitTransaction(ctx context.Context, tx TxID) error
	RollbackTransaction(ctx context.Context, tx TxID) error
}
