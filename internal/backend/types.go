package backend

import (
	"fmt"
	"time"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
)

// TxID is an opaque transaction slot value.
type TxID uint64

// NoTx is the empty slot.
const NoTx TxID = 0

// Active reports whether the slot holds a transaction.
func (tx TxID) Active() bool {
	return tx != NoTx
}

// RegisterRecord carries one information register row.
//
// OwnerType is only stored by object tables. Tx is the slot the object
// insert and update run in; NoTx runs them standalone. Record operations
// take their slot as a separate argument and ignore Tx.
type RegisterRecord struct {
	Table     string
	ID        ident.UniqueID
	Period    time.Time
	Owner     ident.UniqueID
	OwnerType string
	Fields    field.Row
	Tx        TxID
}

// PageSplit is the outcome of SplitSelectToPages.
type PageSplit struct {
	Records  int
	Pages    int
	PageSize int
	// CurrentPage is the one-based page holding the target row, or 0 when
	// no target was given or the target is not in the result set.
	CurrentPage int
}

// PageOrFirst returns CurrentPage, falling back to 1.
func (p PageSplit) PageOrFirst() int {
	if p.CurrentPage < 1 {
		return 1
	}
	return p.CurrentPage
}

// NewPageSplit derives the split from a row count and the zero-based
// position of the target row. A negative position means the target is
// absent.
func NewPageSplit(records, pageSize, position int) (PageSplit, error) {
	if pageSize <= 0 {
		return PageSplit{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if records < 0 {
		records = 0
	}
	split := PageSplit{
		Records:  records,
		Pages:    (records + pageSize - 1) / pageSize,
		PageSize: pageSize,
	}
	if position >= 0 && position < records {
		split.CurrentPage = position/pageSize + 1
	}
	return split, nil
}

// DocumentPointer is the header of one document as listed by a journal.
type DocumentPointer struct {
	TypeDocument  string
	ID            ident.UniqueID
	Name          string
	Number        string
	Date          time.Time
	DeletionLabel bool
	Spend         bool
	// SpendDate is zero when the document was never posted.
	SpendDate time.Time
}

// JournalFilter selects document pointers. Tables and Types are parallel
// slices naming each document table and its type.
type JournalFilter struct {
	Tables      []string
	Types       []string
	PeriodStart time.Time
	PeriodEnd   time.Time
	// TypeFilter restricts the result to one document type when set.
	TypeFilter string
	// Posted restricts the result to posted or unposted documents when set.
	Posted *bool
}

// Validate checks that Tables and Types line up.
func (f JournalFilter) Validate() error {
	if len(f.Tables) != len(f.Types) {
		return fmt.Errorf("journal filter: %d tables but %d types", len(f.Tables), len(f.Types))
	}
	if f.PeriodEnd.Before(f.PeriodStart) {
		return fmt.Errorf("journal filter: period end %s before start %s",
			f.PeriodEnd.Format(time.RFC3339), f.PeriodStart.Format(time.RFC3339))
	}
	return nil
}
