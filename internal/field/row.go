package field

import (
	"github.com/tarachom/accountingstore/internal/ident"
)

// Pair is one named value in a Row.
type Pair struct {
	Name  string
	Value Value
}

// F is shorthand for Pair.
// Example: NewRow(F("code", Text("UAH")), F("rate", IntNumber(1)))
func F(name string, v Value) Pair {
	return Pair{Name: name, Value: v}
}

// Row is an ordered mapping from field name to Value, representing one
// persisted row. ID is the row's identity (Empty for rows not yet saved).
type Row struct {
	ID     ident.UniqueID
	fields []Pair
}

// NewRow builds a row from pairs, keeping their order. A repeated name
// replaces the earlier value in place.
func NewRow(pairs ...Pair) Row {
	var r Row
	for _, p := range pairs {
		r.Set(p.Name, p.Value)
	}
	return r
}

// Set assigns a value. New names are appended; existing names keep their
// position. A nil value is stored as Null.
func (r *Row) Set(name string, v Value) {
	if v == nil {
		v = Null{}
	}
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Pair{Name: name, Value: v})
}

// Get returns the value for name.
func (r Row) Get(name string) (Value, bool) {
	for _, p := range r.fields {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Names returns field names in insertion order.
func (r Row) Names() []string {
	names := make([]string, len(r.fields))
	for i, p := range r.fields {
		names[i] = p.Name
	}
	return names
}

// Values returns values in insertion order.
func (r Row) Values() []Value {
	values := make([]Value, len(r.fields))
	for i, p := range r.fields {
		values[i] = p.Value
	}
	return values
}

// Pairs returns a copy of the row contents.
func (r Row) Pairs() []Pair {
	out := make([]Pair, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.fields)
}

// Clone returns an independent copy.
func (r Row) Clone() Row {
	return Row{ID: r.ID, fields: r.Pairs()}
}

// Equal reports whether both rows hold the same names with equal values.
// Field order and row identity are ignored.
func (r Row) Equal(other Row) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for _, p := range r.fields {
		ov, ok := other.Get(p.Name)
		if !ok || !Equal(p.Value, ov) {
			return false
		}
	}
	return true
}

// RowSet is a sequence of rows in backend order.
type RowSet []Row

// Find returns the row with the given identity.
func (rs RowSet) Find(id ident.UniqueID) (Row, bool) {
	for _, r := range rs {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// JoinMap holds display text resolved for reference fields, keyed by row
// identity and then by field name.
type JoinMap map[ident.UniqueID]map[string]string

// Set records display text for one field of one row.
func (j JoinMap) Set(id ident.UniqueID, name, text string) {
	m, ok := j[id]
	if !ok {
		m = make(map[string]string)
		j[id] = m
	}
	m[name] = text
}

// Get returns the display text for one field of one row.
func (j JoinMap) Get(id ident.UniqueID, name string) (string, bool) {
	m, ok := j[id]
	if !ok {
		return "", false
	}
	text, ok := m[name]
	return text, ok
}
