package query

import (
	"slices"

	"github.com/tarachom/accountingstore/internal/field"
)

// Comparison is a predicate operator.
type Comparison string

const (
	EQ        Comparison = "="
	NOT       Comparison = "<>"
	GT        Comparison = ">"
	GTEQ      Comparison = ">="
	LT        Comparison = "<"
	LTEQ      Comparison = "<="
	LIKE      Comparison = "LIKE"
	ISNULL    Comparison = "IS NULL"
	ISNOTNULL Comparison = "IS NOT NULL"
)

// Comparisons lists every supported operator.
var Comparisons = []Comparison{EQ, NOT, GT, GTEQ, LT, LTEQ, LIKE, ISNULL, ISNOTNULL}

// IsUnary reports whether the operator takes no value.
func (c Comparison) IsUnary() bool {
	return c == ISNULL || c == ISNOTNULL
}

// Valid reports whether c is a known operator.
func (c Comparison) Valid() bool {
	return slices.Contains(Comparisons, c)
}

// Where is one predicate: <Field> <Comparison> <Value>.
// Value is ignored for unary comparisons.
type Where struct {
	Field      string
	Comparison Comparison
	Value      field.Value
}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Query is the declarative description of a select.
//
// Semantics:
//
//	SELECT uid, <Fields> FROM <Table>
//	WHERE <Where[0]> AND <Where[1]> ...
//	ORDER BY <Order>, uid
//	LIMIT <Limit> OFFSET <Offset>
//
// Limit 0 means unlimited. The row identity column is always projected and
// always used as the final ordering tiebreaker.
type Query struct {
	Table  string
	Fields []string
	Where  []Where
	Order  []Order
	Limit  int
	Offset int
}

// New creates a descriptor for table projecting fields.
func New(table string, fields ...string) *Query {
	q := &Query{Table: table}
	return q.Field(fields...)
}

// Field appends names to the projection, skipping duplicates.
func (q *Query) Field(names ...string) *Query {
	for _, n := range names {
		if !slices.Contains(q.Fields, n) {
			q.Fields = append(q.Fields, n)
		}
	}
	return q
}

// Filter appends a predicate.
func (q *Query) Filter(name string, cmp Comparison, v field.Value) *Query {
	q.Where = append(q.Where, Where{Field: name, Comparison: cmp, Value: v})
	return q
}

// ClearFilter removes every predicate.
func (q *Query) ClearFilter() *Query {
	q.Where = nil
	return q
}

// OrderBy appends an ordering term.
func (q *Query) OrderBy(name string, desc bool) *Query {
	q.Order = append(q.Order, Order{Field: name, Desc: desc})
	return q
}

// Window sets LIMIT and OFFSET. Zero limit clears the window.
func (q *Query) Window(limit, offset int) *Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

// Page sets the window to the one-based page of the given size.
func (q *Query) Page(page, size int) *Query {
	if page < 1 {
		page = 1
	}
	return q.Window(size, (page-1)*size)
}

// Clone returns a deep copy.
func (q Query) Clone() Query {
	return Query{
		Table:  q.Table,
		Fields: slices.Clone(q.Fields),
		Where:  slices.Clone(q.Where),
		Order:  slices.Clone(q.Order),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}
