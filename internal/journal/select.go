package journal

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/metadata"
)

// Document is one pointer loaded by a Select.
type Document struct {
	backend.DocumentPointer
	// Table is the document table the pointer was read from.
	Table string
}

// Reference returns a table reference to the document.
func (d Document) Reference() ident.Reference {
	return ident.TableRef(d.ID, d.Table)
}

// Option narrows a Select.
type Option func(*backend.JournalFilter)

// WithType keeps documents of one type only.
func WithType(name string) Option {
	return func(f *backend.JournalFilter) {
		f.TypeFilter = name
	}
}

// WithPosted keeps posted documents when posted is true and unposted ones
// otherwise.
func WithPosted(posted bool) Option {
	return func(f *backend.JournalFilter) {
		f.Posted = &posted
	}
}

// Select is a forward-only cursor over document pointers.
//
// Thread-safety: not safe for concurrent use.
type Select struct {
	k      *kernel.Kernel
	tables []string
	types  []string
	byType map[string]string

	list     []Document
	position int
	current  *Document
}

// NewSelect binds a cursor to the documents of a declared journal.
func NewSelect(k *kernel.Kernel, journalName string) (*Select, error) {
	j, ok := k.Meta.Journal(journalName)
	if !ok {
		return nil, fmt.Errorf("journal: unknown journal %q", journalName)
	}
	return NewSelectTables(k, j.Tables(), j.Types())
}

// NewSelectTables binds a cursor to explicit document tables. tables and
// types are parallel: types[i] names the document type stored in tables[i].
func NewSelectTables(k *kernel.Kernel, tables, types []string) (*Select, error) {
	if len(tables) != len(types) {
		return nil, fmt.Errorf("journal: %d tables but %d types", len(tables), len(types))
	}
	byType := make(map[string]string, len(types))
	for i, table := range tables {
		if _, err := k.Table(table, metadata.KindDocument); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		byType[types[i]] = table
	}
	return &Select{
		k:      k,
		tables: tables,
		types:  types,
		byType: byType,
	}, nil
}

// Select loads every pointer dated within [start, end] and rewinds the
// cursor. It reports whether anything matched.
func (s *Select) Select(ctx context.Context, start, end time.Time, opts ...Option) (bool, error) {
	s.list = nil
	s.position = 0
	s.current = nil

	f := backend.JournalFilter{
		Tables:      s.tables,
		Types:       s.types,
		PeriodStart: start,
		PeriodEnd:   end,
	}
	for _, opt := range opts {
		opt(&f)
	}

	pointers, err := s.k.Backend.SelectJournalDocumentPointer(ctx, f)
	if err != nil {
		return false, fmt.Errorf("journal select: %w", err)
	}
	s.list = make([]Document, len(pointers))
	for i, p := range pointers {
		s.list[i] = Document{DocumentPointer: p, Table: s.byType[p.TypeDocument]}
	}
	return len(s.list) > 0, nil
}

// Count returns the number of loaded pointers.
func (s *Select) Count() int {
	return len(s.list)
}

// Current returns the pointer the cursor stands on, or nil.
func (s *Select) Current() *Document {
	return s.current
}

// MoveToFirst rewinds and moves onto the first pointer.
func (s *Select) MoveToFirst() bool {
	s.position = 0
	return s.MoveNext()
}

// MoveNext moves onto the next pointer. At the end it clears Current and
// returns false.
func (s *Select) MoveNext() bool {
	if s.position >= len(s.list) {
		s.current = nil
		return false
	}
	d := s.list[s.position]
	s.current = &d
	s.position++
	return true
}

// All yields the pointers not yet visited, advancing the cursor.
func (s *Select) All() iter.Seq[Document] {
	return func(yield func(Document) bool) {
		for s.MoveNext() {
			if !yield(*s.current) {
				return
			}
		}
	}
}
