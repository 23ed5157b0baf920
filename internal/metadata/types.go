package metadata

import (
	"cmp"
	"slices"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// TableKind says which component family owns a table.
type TableKind string

const (
	KindConstantsTablePart TableKind = "constants_table_part"
	KindRegisterObject     TableKind = "register_object"
	KindRegisterRecords    TableKind = "register_records"
	KindDocument           TableKind = "document"
	KindDirectory          TableKind = "directory"
)

// System columns of register tables.
const (
	ColumnPeriod    = "period"
	ColumnOwner     = "owner"
	ColumnOwnerType = "ownertype"
)

// Column is one declared column.
type Column struct {
	Name string
	Kind field.Kind
}

// TableDef describes one physical table.
type TableDef struct {
	Name string
	Kind TableKind
	// Entity is the declaring entity, e.g. "Settings.Currencies" or "Prices".
	Entity string
	// Columns holds the user-declared columns in declaration order.
	Columns []Column
	// Presentation names the text column used as display text (directories).
	Presentation string
}

// SystemColumns returns the columns every table of this kind carries in
// addition to the identity column.
func (t TableDef) SystemColumns() []Column {
	switch t.Kind {
	case KindRegisterObject:
		return []Column{
			{Name: ColumnPeriod, Kind: field.KindTimestamp},
			{Name: ColumnOwner, Kind: field.KindIdentity},
			{Name: ColumnOwnerType, Kind: field.KindText},
		}
	case KindRegisterRecords:
		return []Column{
			{Name: ColumnPeriod, Kind: field.KindTimestamp},
			{Name: ColumnOwner, Kind: field.KindIdentity},
		}
	case KindDocument:
		return []Column{
			{Name: querysql.DocName, Kind: field.KindText},
			{Name: querysql.DocNumber, Kind: field.KindText},
			{Name: querysql.DocDate, Kind: field.KindTimestamp},
			{Name: querysql.DocDeletionLabel, Kind: field.KindBool},
			{Name: querysql.DocSpend, Kind: field.KindBool},
			{Name: querysql.DocSpendDate, Kind: field.KindTimestamp},
		}
	case KindDirectory:
		return []Column{
			{Name: querysql.DocDeletionLabel, Kind: field.KindBool},
		}
	default:
		return nil
	}
}

// AllColumns returns system columns followed by user columns.
func (t TableDef) AllColumns() []Column {
	return append(t.SystemColumns(), t.Columns...)
}

// Column returns the column with the given name, system columns included.
func (t TableDef) Column(name string) (Column, bool) {
	for _, c := range t.AllColumns() {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the user-declared column names.
func (t TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// DocumentDef is a declared document type.
type DocumentDef struct {
	Name  string
	Table string
}

// DirectoryDef is a declared directory (catalog).
type DirectoryDef struct {
	Name         string
	Table        string
	Presentation string
}

// RegisterDef is a declared information register. Either form may be
// absent.
type RegisterDef struct {
	Name    string
	Object  string
	Records string
}

// JournalDef is a named set of document types.
type JournalDef struct {
	Name      string
	Documents []DocumentDef
}

// Types returns the document type names in declaration order.
func (j JournalDef) Types() []string {
	types := make([]string, len(j.Documents))
	for i, d := range j.Documents {
		types[i] = d.Name
	}
	return types
}

// Tables returns the document table names in declaration order.
func (j JournalDef) Tables() []string {
	tables := make([]string, len(j.Documents))
	for i, d := range j.Documents {
		tables[i] = d.Table
	}
	return tables
}

// Configuration is the compiled metadata.
type Configuration struct {
	tables      map[string]TableDef
	documents   map[string]DocumentDef
	directories map[string]DirectoryDef
	registers   map[string]RegisterDef
	journals    map[string]JournalDef
}

func newConfiguration() *Configuration {
	return &Configuration{
		tables:      make(map[string]TableDef),
		documents:   make(map[string]DocumentDef),
		directories: make(map[string]DirectoryDef),
		registers:   make(map[string]RegisterDef),
		journals:    make(map[string]JournalDef),
	}
}

// Table looks up a table by physical name.
func (c *Configuration) Table(name string) (TableDef, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Tables returns every declared table sorted by name.
func (c *Configuration) Tables() []TableDef {
	return sortedValues(c.tables, func(t TableDef) string { return t.Name })
}

// Document looks up a document type by name.
func (c *Configuration) Document(name string) (DocumentDef, bool) {
	d, ok := c.documents[name]
	return d, ok
}

// Documents returns every document type sorted by name.
func (c *Configuration) Documents() []DocumentDef {
	return sortedValues(c.documents, func(d DocumentDef) string { return d.Name })
}

// Directory looks up a directory by name.
func (c *Configuration) Directory(name string) (DirectoryDef, bool) {
	d, ok := c.directories[name]
	return d, ok
}

// DirectoryByTable looks up a directory by its table name.
func (c *Configuration) DirectoryByTable(table string) (DirectoryDef, bool) {
	for _, d := range c.directories {
		if d.Table == table {
			return d, true
		}
	}
	return DirectoryDef{}, false
}

// Register looks up an information register by name.
func (c *Configuration) Register(name string) (RegisterDef, bool) {
	r, ok := c.registers[name]
	return r, ok
}

// Journal looks up a journal by name.
func (c *Configuration) Journal(name string) (JournalDef, bool) {
	j, ok := c.journals[name]
	return j, ok
}

// Journals returns every journal sorted by name.
func (c *Configuration) Journals() []JournalDef {
	return sortedValues(c.journals, func(j JournalDef) string { return j.Name })
}

func sortedValues[T any](m map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return out
}
