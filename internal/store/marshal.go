package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/query"
)

// rowParams converts a row's user fields to column names and bound
// parameters. Every field must be declared and match its declared kind;
// Null is accepted for any column.
func rowParams(def metadata.TableDef, row field.Row) ([]string, []any, error) {
	var names []string
	var params []any
	for _, p := range row.Pairs() {
		col, ok := userColumn(def, p.Name)
		if !ok {
			return nil, nil, fmt.Errorf("table %s: unknown column %q", def.Name, p.Name)
		}
		if k := p.Value.Kind(); k != field.KindNull && k != col.Kind {
			return nil, nil, fmt.Errorf("table %s: column %q expects %s, got %s", def.Name, p.Name, col.Kind, k)
		}
		param, err := field.ToParam(p.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("table %s: column %q: %w", def.Name, p.Name, err)
		}
		names = append(names, p.Name)
		params = append(params, param)
	}
	return names, params, nil
}

func userColumn(def metadata.TableDef, name string) (metadata.Column, bool) {
	for _, c := range def.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return metadata.Column{}, false
}

// selectColumns resolves the kinds of the projected columns, identity
// first.
func selectColumns(def metadata.TableDef, names []string) ([]metadata.Column, error) {
	cols := make([]metadata.Column, 0, len(names))
	for _, name := range names[1:] {
		col, ok := def.Column(name)
		if !ok {
			return nil, fmt.Errorf("table %s: unknown column %q", def.Name, name)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// scanRows reads uid plus cols from every row.
//
// Returns an empty RowSet (not nil) when nothing matched.
func scanRows(rows *sql.Rows, cols []metadata.Column) (field.RowSet, error) {
	set := field.RowSet{}
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		set = append(set, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return set, nil
}

func scanRow(rows *sql.Rows, cols []metadata.Column) (field.Row, error) {
	var uid string
	raw := make([]any, len(cols))
	dest := make([]any, len(cols)+1)
	dest[0] = &uid
	for i := range raw {
		dest[i+1] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return field.Row{}, fmt.Errorf("scan row: %w", err)
	}

	id, err := ident.Parse(uid)
	if err != nil {
		return field.Row{}, fmt.Errorf("scan row: %w", err)
	}
	row := field.Row{ID: id}
	for i, c := range cols {
		v, err := field.FromColumn(c.Kind, raw[i])
		if err != nil {
			return field.Row{}, fmt.Errorf("scan row %s column %s: %w", id, c.Name, err)
		}
		row.Set(c.Name, v)
	}
	return row, nil
}

// joinMap resolves display text for every non-empty reference value.
// It runs after the rows are closed so the resolver may query the store.
func (s *Store) joinMap(ctx context.Context, set field.RowSet) (field.JoinMap, error) {
	join := field.JoinMap{}
	for _, row := range set {
		for _, p := range row.Pairs() {
			ref, ok := p.Value.(field.Ref)
			if !ok || ref.Reference.IsEmpty() {
				continue
			}
			text, err := s.resolver.ResolvePresentation(ctx, ref.Reference)
			if err != nil {
				return nil, fmt.Errorf("resolve %s.%s: %w", row.ID, p.Name, err)
			}
			join.Set(row.ID, p.Name, text)
		}
	}
	return join, nil
}

// selectRows executes q against def under tx and builds the join map.
func (s *Store) selectRows(ctx context.Context, tx backend.TxID, def metadata.TableDef, q query.Query) (field.RowSet, field.JoinMap, error) {
	sqlText, params, err := s.compiler.CompileSelect(q)
	if err != nil {
		return nil, nil, err
	}
	cols, err := selectColumns(def, s.compiler.Columns(q))
	if err != nil {
		return nil, nil, err
	}

	c, err := s.conn(tx)
	if err != nil {
		return nil, nil, err
	}
	rows, err := c.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", def.Name, err)
	}
	set, err := scanRows(rows, cols)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	join, err := s.joinMap(ctx, set)
	if err != nil {
		return nil, nil, err
	}
	return set, join, nil
}
