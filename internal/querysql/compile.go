// Package querysql compiles query descriptors to parameterized SQLite SQL.
//
// Every select carries an ORDER BY ending in the row identity so results,
// page positions and page splits are deterministic. Values are always bound
// as ? parameters and never interpolated. Identifiers are checked against a
// conservative pattern instead of being quoted.
package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
)

// IDColumn is the identity column present on every table.
const IDColumn = "uid"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckIdentifier rejects table and column names that are not plain
// identifiers.
func CheckIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// Compiler compiles query descriptors for SQLite.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// CompileSelect converts a descriptor to a SELECT returning the identity
// column followed by the projected fields.
//
// MANDATORY: the ORDER BY always ends with the identity tiebreaker.
func (c *Compiler) CompileSelect(q query.Query) (string, []any, error) {
	if err := c.check(q); err != nil {
		return "", nil, err
	}

	columns := c.Columns(q)

	whereClause, params, err := c.compileWhere(q.Where)
	if err != nil {
		return "", nil, err
	}

	orderClause, err := c.stableOrder(q.Order)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(columns, ", "),
		q.Table,
		whereClause,
		orderClause)

	switch {
	case q.Limit > 0:
		sql += " LIMIT ? OFFSET ?"
		params = append(params, q.Limit, q.Offset)
	case q.Offset > 0:
		sql += " LIMIT -1 OFFSET ?"
		params = append(params, q.Offset)
	}

	return sql, params, nil
}

// Columns returns the select list: the identity column followed by the
// projected fields without duplicates.
func (c *Compiler) Columns(q query.Query) []string {
	columns := []string{IDColumn}
	for _, f := range q.Fields {
		if f != IDColumn {
			columns = append(columns, f)
		}
	}
	return columns
}

// CompileCount converts a descriptor to a COUNT(*) over the same predicate.
// Ordering and window are ignored.
func (c *Compiler) CompileCount(q query.Query) (string, []any, error) {
	if err := c.check(q); err != nil {
		return "", nil, err
	}

	whereClause, params, err := c.compileWhere(q.Where)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.Table, whereClause), params, nil
}

// CompilePosition returns the zero-based ordinal of the target row under the
// descriptor's ordering. The query yields no row if the target is absent.
// The window is ignored.
func (c *Compiler) CompilePosition(q query.Query, target ident.UniqueID) (string, []any, error) {
	if err := c.check(q); err != nil {
		return "", nil, err
	}

	whereClause, params, err := c.compileWhere(q.Where)
	if err != nil {
		return "", nil, err
	}

	orderClause, err := c.stableOrder(q.Order)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf(
		"SELECT pos FROM (SELECT %s, ROW_NUMBER() OVER (ORDER BY %s) - 1 AS pos FROM %s%s) WHERE %s = ?",
		IDColumn, orderClause, q.Table, whereClause, IDColumn)
	params = append(params, target.String())

	return sql, params, nil
}

func (c *Compiler) check(q query.Query) error {
	if result := query.Validate(q); !result.Valid {
		return result.Err()
	}
	if err := CheckIdentifier(q.Table); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	for _, f := range q.Fields {
		if err := CheckIdentifier(f); err != nil {
			return fmt.Errorf("field: %w", err)
		}
	}
	return nil
}

// compileWhere joins predicates with AND. Returns an empty clause when
// there are no predicates.
// CRITICAL: values are never interpolated.
func (c *Compiler) compileWhere(preds []query.Where) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}

	var parts []string
	var params []any
	for _, w := range preds {
		if err := CheckIdentifier(w.Field); err != nil {
			return "", nil, fmt.Errorf("where: %w", err)
		}
		if w.Comparison.IsUnary() {
			parts = append(parts, fmt.Sprintf("%s %s", w.Field, w.Comparison))
			continue
		}
		param, err := field.ToParam(w.Value)
		if err != nil {
			return "", nil, fmt.Errorf("where %s: %w", w.Field, err)
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", w.Field, w.Comparison))
		params = append(params, param)
	}

	return " WHERE " + strings.Join(parts, " AND "), params, nil
}

// stableOrder renders the ORDER BY terms with the identity tiebreaker.
// COLLATE BINARY keeps text ordering identical across SQLite builds.
func (c *Compiler) stableOrder(order []query.Order) (string, error) {
	var parts []string
	for _, o := range order {
		if o.Field == IDColumn {
			continue
		}
		if err := CheckIdentifier(o.Field); err != nil {
			return "", fmt.Errorf("order: %w", err)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, o.Field+" "+dir)
	}
	parts = append(parts, IDColumn+" COLLATE BINARY ASC")
	return strings.Join(parts, ", "), nil
}
