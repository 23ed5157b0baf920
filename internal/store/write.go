package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/querysql"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// exec runs a mutating statement under tx and returns the affected row
// count.
func (s *Store) exec(ctx context.Context, tx backend.TxID, op, stmt string, args ...any) (int64, error) {
	c, err := s.writeConn(tx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	res, err := c.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	s.logger.DebugContext(ctx, op, "tx", tx, "rows", n)
	return n, nil
}

func requireID(op string, id ident.UniqueID) error {
	if id.IsEmpty() {
		return fmt.Errorf("%s: identity is empty", op)
	}
	return nil
}

// InsertConstantsTablePartRecords inserts the row or replaces an existing
// row with the same identity.
func (s *Store) InsertConstantsTablePartRecords(ctx context.Context, tx backend.TxID, id ident.UniqueID, table string, row field.Row) error {
	const op = "insert table part row"
	if err := requireID(op, id); err != nil {
		return err
	}
	def, err := s.table(table, metadata.KindConstantsTablePart)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, row)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cols := append([]string{querysql.IDColumn}, names...)
	args := append([]any{id.String()}, params...)
	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		def.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	_, err = s.exec(ctx, tx, op, stmt, args...)
	return err
}

// RemoveConstantsTablePartRecords deletes one row.
func (s *Store) RemoveConstantsTablePartRecords(ctx context.Context, tx backend.TxID, id ident.UniqueID, table string) error {
	return s.deleteByID(ctx, tx, "remove table part row", table, id, metadata.KindConstantsTablePart)
}

// DeleteConstantsTablePartRecords deletes every row of the table part.
func (s *Store) DeleteConstantsTablePartRecords(ctx context.Context, tx backend.TxID, table string) error {
	const op = "delete table part rows"
	def, err := s.table(table, metadata.KindConstantsTablePart)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.exec(ctx, tx, op, fmt.Sprintf("DELETE FROM %s", def.Name))
	return err
}

// InsertRegisterInformationObject inserts a new object row. It reports
// false without error when a row with the same identity already exists.
func (s *Store) InsertRegisterInformationObject(ctx context.Context, rec backend.RegisterRecord) (bool, error) {
	const op = "insert register object"
	if err := requireID(op, rec.ID); err != nil {
		return false, err
	}
	def, err := s.table(rec.Table, metadata.KindRegisterObject)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, rec.Fields)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	cols := append([]string{querysql.IDColumn, metadata.ColumnPeriod, metadata.ColumnOwner, metadata.ColumnOwnerType}, names...)
	args := append([]any{rec.ID.String(), field.FormatTimestamp(rec.Period), rec.Owner.String(), rec.OwnerType}, params...)
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO NOTHING",
		def.Name, strings.Join(cols, ", "), placeholders(len(cols)), querysql.IDColumn)

	n, err := s.exec(ctx, rec.Tx, op, stmt, args...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateRegisterInformationObject rewrites an existing object row. The
// existence check and the write are one statement: it reports false when
// no row with the identity exists.
func (s *Store) UpdateRegisterInformationObject(ctx context.Context, rec backend.RegisterRecord) (bool, error) {
	const op = "update register object"
	if err := requireID(op, rec.ID); err != nil {
		return false, err
	}
	def, err := s.table(rec.Table, metadata.KindRegisterObject)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, rec.Fields)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	cols := append([]string{metadata.ColumnPeriod, metadata.ColumnOwner, metadata.ColumnOwnerType}, names...)
	args := append([]any{field.FormatTimestamp(rec.Period), rec.Owner.String(), rec.OwnerType}, params...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	args = append(args, rec.ID.String())
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", def.Name, strings.Join(sets, ", "), querysql.IDColumn)

	n, err := s.exec(ctx, rec.Tx, op, stmt, args...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteRegisterInformationObject deletes one object row.
func (s *Store) DeleteRegisterInformationObject(ctx context.Context, tx backend.TxID, table string, id ident.UniqueID) error {
	return s.deleteByID(ctx, tx, "delete register object", table, id, metadata.KindRegisterObject)
}

// InsertRegisterInformationRecords inserts one record.
func (s *Store) InsertRegisterInformationRecords(ctx context.Context, tx backend.TxID, rec backend.RegisterRecord) error {
	const op = "insert register record"
	if err := requireID(op, rec.ID); err != nil {
		return err
	}
	def, err := s.table(rec.Table, metadata.KindRegisterRecords)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, rec.Fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cols := append([]string{querysql.IDColumn, metadata.ColumnPeriod, metadata.ColumnOwner}, names...)
	args := append([]any{rec.ID.String(), field.FormatTimestamp(rec.Period), rec.Owner.String()}, params...)
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		def.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	_, err = s.exec(ctx, tx, op, stmt, args...)
	return err
}

// RemoveRegisterInformationRecords deletes one record.
func (s *Store) RemoveRegisterInformationRecords(ctx context.Context, tx backend.TxID, id ident.UniqueID, table string) error {
	return s.deleteByID(ctx, tx, "remove register record", table, id, metadata.KindRegisterRecords)
}

// DeleteRegisterInformationRecords deletes every record of owner.
func (s *Store) DeleteRegisterInformationRecords(ctx context.Context, tx backend.TxID, table string, owner ident.UniqueID) error {
	const op = "delete register records"
	def, err := s.table(table, metadata.KindRegisterRecords)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", def.Name, metadata.ColumnOwner)
	_, err = s.exec(ctx, tx, op, stmt, owner.String())
	return err
}

func (s *Store) deleteByID(ctx context.Context, tx backend.TxID, op, table string, id ident.UniqueID, kind metadata.TableKind) error {
	def, err := s.table(table, kind)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", def.Name, querysql.IDColumn)
	_, err = s.exec(ctx, tx, op, stmt, id.String())
	return err
}
