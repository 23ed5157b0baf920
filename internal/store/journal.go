package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// SelectJournalDocumentPointer lists document headers whose date falls in
// [PeriodStart, PeriodEnd], ordered by date then identity.
//
// Returns an empty slice (not nil) when nothing matched.
func (s *Store) SelectJournalDocumentPointer(ctx context.Context, f backend.JournalFilter) ([]backend.DocumentPointer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	sel := querysql.JournalSelect{Start: f.PeriodStart, End: f.PeriodEnd, Posted: f.Posted}
	for i, table := range f.Tables {
		if f.TypeFilter != "" && f.Types[i] != f.TypeFilter {
			continue
		}
		if _, err := s.table(table, metadata.KindDocument); err != nil {
			return nil, fmt.Errorf("select journal: %w", err)
		}
		sel.Branches = append(sel.Branches, querysql.JournalBranch{Type: f.Types[i], Table: table})
	}

	pointers := []backend.DocumentPointer{}
	sqlText, params, err := s.compiler.CompileJournal(sel)
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	if sqlText == "" {
		return pointers, nil
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPointer(rows)
		if err != nil {
			return nil, err
		}
		pointers = append(pointers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return pointers, nil
}

func scanPointer(rows *sql.Rows) (backend.DocumentPointer, error) {
	var (
		p                    backend.DocumentPointer
		uid                  string
		name, number         sql.NullString
		date, spendDate      sql.NullString
		deletionLabel, spend sql.NullBool
	)
	if err := rows.Scan(&p.TypeDocument, &uid, &name, &number, &date, &deletionLabel, &spend, &spendDate); err != nil {
		return p, fmt.Errorf("scan journal pointer: %w", err)
	}

	id, err := ident.Parse(uid)
	if err != nil {
		return p, fmt.Errorf("scan journal pointer: %w", err)
	}
	p.ID = id
	p.Name = name.String
	p.Number = number.String
	p.DeletionLabel = deletionLabel.Bool
	p.Spend = spend.Bool
	if p.Date, err = parseNullTime(date); err != nil {
		return p, fmt.Errorf("scan journal pointer %s: %w", id, err)
	}
	if p.SpendDate, err = parseNullTime(spendDate); err != nil {
		return p, fmt.Errorf("scan journal pointer %s: %w", id, err)
	}
	return p, nil
}

func parseNullTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	ts, err := field.ParseTimestamp(s.String)
	if err != nil {
		return time.Time{}, err
	}
	return ts.Time, nil
}
