// Package constants implements table parts: row sets attached to a named
// configuration singleton (a constants block).
package constants

import (
	"context"
	"fmt"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/query"
)

// ErrTransactionActive is returned by BeginTransaction while the slot is
// held.
var ErrTransactionActive = backend.ErrTransactionActive

// TablePart reads and writes the rows of one table part.
//
// Thread-safety: not safe for concurrent use. Use one instance per
// session; the kernel and backend may be shared.
type TablePart struct {
	k     *kernel.Kernel
	def   metadata.TableDef
	query *query.Query
	slot  *kernel.Slot

	// Records is the snapshot loaded by Read, in backend order.
	Records field.RowSet
	// JoinValue holds display text of reference fields of Records.
	JoinValue field.JoinMap
	// IsRead reports whether Read completed since construction.
	IsRead bool
}

// NewTablePart binds a table part. With no fields, every declared column
// is read.
func NewTablePart(k *kernel.Kernel, table string, fields ...string) (*TablePart, error) {
	def, err := k.Table(table, metadata.KindConstantsTablePart)
	if err != nil {
		return nil, fmt.Errorf("table part: %w", err)
	}
	if len(fields) == 0 {
		fields = def.ColumnNames()
	}
	for _, f := range fields {
		if _, ok := def.Column(f); !ok {
			return nil, fmt.Errorf("table part %s: unknown field %q", table, f)
		}
	}
	return &TablePart{
		k:         k,
		def:       def,
		query:     query.New(def.Name, fields...),
		slot:      kernel.NewSlot(k.Backend, def.Name),
		Records:   field.RowSet{},
		JoinValue: field.JoinMap{},
	}, nil
}

// Table returns the bound table name.
func (p *TablePart) Table() string {
	return p.def.Name
}

// Query returns the bound descriptor. Ordering and filters added to it
// apply to the next Read.
func (p *TablePart) Query() *query.Query {
	return p.query
}

// Read replaces the snapshot with the current rows. Under an open
// transaction it sees the transaction's own writes.
func (p *TablePart) Read(ctx context.Context) error {
	p.Records = field.RowSet{}
	p.JoinValue = field.JoinMap{}

	rows, join, err := p.k.Backend.SelectConstantsTablePartRecords(ctx, p.slot.Tx(), p.query.Clone())
	if err != nil {
		return fmt.Errorf("read table part %s: %w", p.def.Name, err)
	}
	p.Records = rows
	p.JoinValue = join
	p.IsRead = true
	return nil
}

// Remove deletes the row with id. Empty or unknown identities are
// silently skipped.
func (p *TablePart) Remove(ctx context.Context, id ident.UniqueID) error {
	if id.IsEmpty() {
		return nil
	}
	exists, err := p.k.Backend.IsExistUniqueID(ctx, p.slot.Tx(), id, p.def.Name)
	if err != nil {
		return fmt.Errorf("remove table part row: %w", err)
	}
	if !exists {
		return nil
	}
	return p.k.Backend.RemoveConstantsTablePartRecords(ctx, p.slot.Tx(), id, p.def.Name)
}

// DeleteAll deletes every row of the table part.
func (p *TablePart) DeleteAll(ctx context.Context) error {
	return p.k.Backend.DeleteConstantsTablePartRecords(ctx, p.slot.Tx(), p.def.Name)
}

// Save inserts row, replacing any row with the same identity. An empty id
// gets a fresh identity. Returns the identity used.
func (p *TablePart) Save(ctx context.Context, id ident.UniqueID, row field.Row) (ident.UniqueID, error) {
	if id.IsEmpty() {
		id = p.k.NewID()
	}
	if err := p.k.Backend.InsertConstantsTablePartRecords(ctx, p.slot.Tx(), id, p.def.Name, row); err != nil {
		return ident.Empty, err
	}
	return id, nil
}

// Tx returns the current transaction slot value.
func (p *TablePart) Tx() backend.TxID {
	return p.slot.Tx()
}

// BeginTransaction opens the slot. Returns ErrTransactionActive while a
// transaction is already open.
func (p *TablePart) BeginTransaction(ctx context.Context) error {
	return p.slot.Begin(ctx)
}

// CommitTransaction commits and empties the slot.
func (p *TablePart) CommitTransaction(ctx context.Context) error {
	return p.slot.Commit(ctx)
}

// RollbackTransaction rolls back and empties the slot.
func (p *TablePart) RollbackTransaction(ctx context.Context) error {
	return p.slot.Rollback(ctx)
}

// InTransaction runs fn inside a transaction that is committed when fn
// succeeds and rolled back when it fails or panics.
func (p *TablePart) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.slot.Run(ctx, fn)
}
