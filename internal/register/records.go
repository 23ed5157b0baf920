package register

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/query"
)

// DefaultPageSize is used by SplitSelectToPages and ReadPage when the
// page size is zero.
const DefaultPageSize = 1000

// RecordsSet reads and writes the records of one register.
//
// Thread-safety: not safe for concurrent use.
type RecordsSet struct {
	k     *kernel.Kernel
	def   metadata.TableDef
	query *query.Query
	slot  *kernel.Slot

	// Records is the snapshot loaded by Read or ReadPage.
	Records field.RowSet
	// JoinValue holds display text of reference fields of Records.
	JoinValue field.JoinMap
	// IsRead reports whether a read completed since construction.
	IsRead bool
}

// NewRecordsSet binds a record set. The descriptor always projects period
// and owner; with no fields every declared column follows.
func NewRecordsSet(k *kernel.Kernel, table string, fields ...string) (*RecordsSet, error) {
	def, err := k.Table(table, metadata.KindRegisterRecords)
	if err != nil {
		return nil, fmt.Errorf("register records: %w", err)
	}
	if len(fields) == 0 {
		fields = def.ColumnNames()
	}
	for _, f := range fields {
		if _, ok := def.Column(f); !ok {
			return nil, fmt.Errorf("register records %s: unknown field %q", table, f)
		}
	}
	q := query.New(def.Name, metadata.ColumnPeriod, metadata.ColumnOwner).Field(fields...)
	return &RecordsSet{
		k:         k,
		def:       def,
		query:     q,
		slot:      kernel.NewSlot(k.Backend, def.Name),
		Records:   field.RowSet{},
		JoinValue: field.JoinMap{},
	}, nil
}

// Table returns the bound table name.
func (r *RecordsSet) Table() string {
	return r.def.Name
}

// Query returns the bound descriptor. Filters and ordering added to it
// apply to reads and page splits.
func (r *RecordsSet) Query() *query.Query {
	return r.query
}

// descriptor returns a copy of the bound descriptor that still projects
// period and owner if a caller cleared them.
func (r *RecordsSet) descriptor() query.Query {
	q := r.query.Clone()
	for _, f := range []string{metadata.ColumnOwner, metadata.ColumnPeriod} {
		if !slices.Contains(q.Fields, f) {
			q.Fields = append([]string{f}, q.Fields...)
		}
	}
	return q
}

// Read replaces the snapshot with every record matched by the descriptor.
func (r *RecordsSet) Read(ctx context.Context) error {
	return r.read(ctx, r.descriptor())
}

// ReadPage replaces the snapshot with one page, counted from 1, of the
// records matched by the descriptor.
func (r *RecordsSet) ReadPage(ctx context.Context, page, pageSize int) error {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 0 {
		return fmt.Errorf("read page: %w: %d", backend.ErrInvalidPageSize, pageSize)
	}
	q := r.descriptor()
	q.Page(page, pageSize)
	return r.read(ctx, q)
}

func (r *RecordsSet) read(ctx context.Context, q query.Query) error {
	r.Records = field.RowSet{}
	r.JoinValue = field.JoinMap{}

	rows, join, err := r.k.Backend.SelectRegisterInformationRecords(ctx, r.slot.Tx(), q)
	if err != nil {
		return fmt.Errorf("read register records %s: %w", r.def.Name, err)
	}
	r.Records = rows
	r.JoinValue = join
	r.IsRead = true
	return nil
}

// SplitSelectToPages counts the records matched by the descriptor and,
// when target is not Empty, finds the page holding it. A zero pageSize
// means DefaultPageSize.
func (r *RecordsSet) SplitSelectToPages(ctx context.Context, target ident.UniqueID, pageSize int) (backend.PageSplit, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return r.k.Backend.SplitSelectToPages(ctx, r.slot.Tx(), r.descriptor(), target, pageSize)
}

// Remove deletes the record with id. Empty or unknown identities are
// silently skipped.
func (r *RecordsSet) Remove(ctx context.Context, id ident.UniqueID) error {
	if id.IsEmpty() {
		return nil
	}
	exists, err := r.k.Backend.IsExistUniqueID(ctx, r.slot.Tx(), id, r.def.Name)
	if err != nil {
		return fmt.Errorf("remove register record: %w", err)
	}
	if !exists {
		return nil
	}
	return r.k.Backend.RemoveRegisterInformationRecords(ctx, r.slot.Tx(), id, r.def.Name)
}

// DeleteByOwner deletes every record of owner.
func (r *RecordsSet) DeleteByOwner(ctx context.Context, owner ident.UniqueID) error {
	return r.k.Backend.DeleteRegisterInformationRecords(ctx, r.slot.Tx(), r.def.Name, owner)
}

// Save inserts a record. An empty id gets a fresh identity. Returns the
// identity used.
func (r *RecordsSet) Save(ctx context.Context, id ident.UniqueID, period time.Time, owner ident.UniqueID, row field.Row) (ident.UniqueID, error) {
	if id.IsEmpty() {
		id = r.k.NewID()
	}
	err := r.k.Backend.InsertRegisterInformationRecords(ctx, r.slot.Tx(), backend.RegisterRecord{
		Table:  r.def.Name,
		ID:     id,
		Period: period,
		Owner:  owner,
		Fields: row,
	})
	if err != nil {
		return ident.Empty, err
	}
	return id, nil
}

// Tx returns the current transaction slot value.
func (r *RecordsSet) Tx() backend.TxID {
	return r.slot.Tx()
}

// BeginTransaction opens the slot. Fails while a transaction is open.
func (r *RecordsSet) BeginTransaction(ctx context.Context) error {
	return r.slot.Begin(ctx)
}

// CommitTransaction commits and empties the slot.
func (r *RecordsSet) CommitTransaction(ctx context.Context) error {
	return r.slot.Commit(ctx)
}

// RollbackTransaction rolls back and empties the slot.
func (r *RecordsSet) RollbackTransaction(ctx context.Context) error {
	return r.slot.Rollback(ctx)
}

// InTransaction runs fn inside a transaction that is committed when fn
// succeeds and rolled back when it fails or panics.
func (r *RecordsSet) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.slot.Run(ctx, fn)
}
