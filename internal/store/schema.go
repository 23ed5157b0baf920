package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// TableInfo is one catalog entry.
type TableInfo struct {
	Name    string
	Kind    metadata.TableKind
	Entity  string
	Columns []string
}

// columnType maps a field kind to its SQLite declared type.
// Timestamps must stay TEXT: a TIMESTAMP declared type makes the driver
// parse values with its own layouts.
func columnType(kind field.Kind) string {
	switch kind {
	case field.KindNumber:
		return "NUMERIC"
	case field.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// createTableSQL renders the DDL for a declared table.
func createTableSQL(def metadata.TableDef) []string {
	cols := []string{querysql.IDColumn + " TEXT PRIMARY KEY NOT NULL"}
	for _, c := range def.AllColumns() {
		cols = append(cols, c.Name+" "+columnType(c.Kind))
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", def.Name, strings.Join(cols, ", ")),
	}

	switch def.Kind {
	case metadata.KindRegisterRecords:
		stmts = append(stmts,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s(%s)", def.Name, def.Name, metadata.ColumnOwner),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_period ON %s(%s)", def.Name, def.Name, metadata.ColumnPeriod))
	case metadata.KindDocument:
		stmts = append(stmts,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_docdate ON %s(%s)", def.Name, def.Name, querysql.DocDate))
	}
	return stmts
}

// syncTables creates every declared table and adds missing columns to
// existing ones. Columns are never dropped.
func (s *Store) syncTables(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, def := range s.meta.Tables() {
		for _, stmt := range createTableSQL(def) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create table %s: %w", def.Name, err)
			}
		}

		existing, err := tableColumns(ctx, tx, def.Name)
		if err != nil {
			return err
		}
		for _, c := range def.AllColumns() {
			if existing[c.Name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", def.Name, c.Name, columnType(c.Kind))
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("add column %s.%s: %w", def.Name, c.Name, err)
			}
			s.logger.InfoContext(ctx, "added column", "table", def.Name, "column", c.Name, "kind", c.Kind)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO accstore_tables (name, kind, entity, columns, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				kind = excluded.kind,
				entity = excluded.entity,
				columns = excluded.columns,
				updated_at = excluded.updated_at
		`, def.Name, string(def.Kind), def.Entity, encodeColumns(def.Columns), now)
		if err != nil {
			return fmt.Errorf("record table %s: %w", def.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info %s: %w", table, err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info %s: %w", table, err)
	}
	return columns, nil
}

func encodeColumns(cols []metadata.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.Name + ":" + string(c.Kind)
	}
	return strings.Join(parts, ",")
}

// Tables lists the catalog ordered by table name.
//
// Returns an empty slice (not nil) when no table was created.
func (s *Store) Tables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, entity, columns
		FROM accstore_tables
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []TableInfo{}
	for rows.Next() {
		var info TableInfo
		var kind, columns string
		if err := rows.Scan(&info.Name, &kind, &info.Entity, &columns); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		info.Kind = metadata.TableKind(kind)
		info.Columns = []string{}
		if columns != "" {
			info.Columns = strings.Split(columns, ",")
		}
		tables = append(tables, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}
