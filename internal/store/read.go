package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/query"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// SelectConstantsTablePartRecords executes q against a table part.
func (s *Store) SelectConstantsTablePartRecords(ctx context.Context, tx backend.TxID, q query.Query) (field.RowSet, field.JoinMap, error) {
	def, err := s.table(q.Table, metadata.KindConstantsTablePart)
	if err != nil {
		return nil, nil, fmt.Errorf("select table part: %w", err)
	}
	return s.selectRows(ctx, tx, def, q)
}

// SelectRegisterInformationRecords executes q against a record set.
func (s *Store) SelectRegisterInformationRecords(ctx context.Context, tx backend.TxID, q query.Query) (field.RowSet, field.JoinMap, error) {
	def, err := s.table(q.Table, metadata.KindRegisterRecords)
	if err != nil {
		return nil, nil, fmt.Errorf("select register records: %w", err)
	}
	return s.selectRows(ctx, tx, def, q)
}

// Select executes q against any declared table. Used by tooling.
func (s *Store) Select(ctx context.Context, q query.Query) (field.RowSet, field.JoinMap, error) {
	def, err := s.table(q.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("select: %w", err)
	}
	return s.selectRows(ctx, backend.NoTx, def, q)
}

// SelectRegisterInformationObject reads one object row. Returns nil, nil
// when the row does not exist.
func (s *Store) SelectRegisterInformationObject(ctx context.Context, tx backend.TxID, id ident.UniqueID, table string, fields []string) (*backend.RegisterRecord, error) {
	def, err := s.table(table, metadata.KindRegisterObject)
	if err != nil {
		return nil, fmt.Errorf("select register object: %w", err)
	}

	q := query.New(def.Name, metadata.ColumnPeriod, metadata.ColumnOwner, metadata.ColumnOwnerType).
		Field(fields...).
		Filter(querysql.IDColumn, query.EQ, field.ID(id))
	set, _, err := s.selectRows(ctx, tx, def, *q)
	if err != nil {
		return nil, fmt.Errorf("select register object: %w", err)
	}
	if len(set) == 0 {
		return nil, nil
	}

	row := set[0]
	rec := &backend.RegisterRecord{Table: def.Name, ID: row.ID}
	for _, p := range row.Pairs() {
		switch p.Name {
		case metadata.ColumnPeriod:
			if ts, ok := p.Value.(field.Timestamp); ok {
				rec.Period = ts.Time
			}
		case metadata.ColumnOwner:
			if owner, ok := p.Value.(field.Identity); ok {
				rec.Owner = owner.UniqueID
			}
		case metadata.ColumnOwnerType:
			if ownerType, ok := p.Value.(field.Text); ok {
				rec.OwnerType = string(ownerType)
			}
		default:
			rec.Fields.Set(p.Name, p.Value)
		}
	}
	return rec, nil
}

// IsExistUniqueID reports whether table holds a row with id, as seen from
// tx. The empty identity never exists.
func (s *Store) IsExistUniqueID(ctx context.Context, tx backend.TxID, id ident.UniqueID, table string) (bool, error) {
	if id.IsEmpty() {
		return false, nil
	}
	def, err := s.table(table)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	c, err := s.conn(tx)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}

	var one int
	err = c.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", def.Name, querysql.IDColumn),
		id.String(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return true, nil
}

// SplitSelectToPages counts the rows matched by q and, when target is not
// Empty, finds the page holding it under q's ordering. The window of q is
// ignored.
func (s *Store) SplitSelectToPages(ctx context.Context, tx backend.TxID, q query.Query, target ident.UniqueID, pageSize int) (backend.PageSplit, error) {
	if pageSize <= 0 {
		return backend.PageSplit{}, fmt.Errorf("split pages: %w: %d", backend.ErrInvalidPageSize, pageSize)
	}
	if _, err := s.table(q.Table); err != nil {
		return backend.PageSplit{}, fmt.Errorf("split pages: %w", err)
	}
	c, err := s.conn(tx)
	if err != nil {
		return backend.PageSplit{}, fmt.Errorf("split pages: %w", err)
	}

	countSQL, params, err := s.compiler.CompileCount(q)
	if err != nil {
		return backend.PageSplit{}, fmt.Errorf("split pages: %w", err)
	}
	var records int
	if err := c.QueryRowContext(ctx, countSQL, params...).Scan(&records); err != nil {
		return backend.PageSplit{}, fmt.Errorf("split pages: count: %w", err)
	}

	position := -1
	if !target.IsEmpty() {
		posSQL, params, err := s.compiler.CompilePosition(q, target)
		if err != nil {
			return backend.PageSplit{}, fmt.Errorf("split pages: %w", err)
		}
		err = c.QueryRowContext(ctx, posSQL, params...).Scan(&position)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			position = -1
		case err != nil:
			return backend.PageSplit{}, fmt.Errorf("split pages: position: %w", err)
		}
	}

	return backend.NewPageSplit(records, pageSize, position)
}
