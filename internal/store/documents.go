package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// DocumentRecord is a document header plus its declared fields.
type DocumentRecord struct {
	Type          string
	ID            ident.UniqueID
	Name          string
	Number        string
	Date          time.Time
	DeletionLabel bool
	Spend         bool
	// SpendDate is stored as NULL when zero.
	SpendDate time.Time
	Fields    field.Row
}

// DirectoryItem is one directory row.
type DirectoryItem struct {
	Directory     string
	ID            ident.UniqueID
	DeletionLabel bool
	Fields        field.Row
}

// InsertDocument inserts or replaces a document row.
func (s *Store) InsertDocument(ctx context.Context, tx backend.TxID, doc DocumentRecord) error {
	const op = "insert document"
	if err := requireID(op, doc.ID); err != nil {
		return err
	}
	docDef, ok := s.meta.Document(doc.Type)
	if !ok {
		return fmt.Errorf("%s: unknown document type %q", op, doc.Type)
	}
	def, err := s.table(docDef.Table, metadata.KindDocument)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, doc.Fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var spendDate any
	if !doc.SpendDate.IsZero() {
		spendDate = field.FormatTimestamp(doc.SpendDate)
	}
	cols := append([]string{querysql.IDColumn}, querysql.DocumentColumns...)
	cols = append(cols, names...)
	args := []any{
		doc.ID.String(), doc.Name, doc.Number, field.FormatTimestamp(doc.Date),
		boolParam(doc.DeletionLabel), boolParam(doc.Spend), spendDate,
	}
	args = append(args, params...)
	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		def.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := s.exec(ctx, tx, op, stmt, args...); err != nil {
		return err
	}
	s.forget(ident.TableRef(doc.ID, def.Name))
	return nil
}

// InsertDirectoryItem inserts or replaces a directory row.
func (s *Store) InsertDirectoryItem(ctx context.Context, tx backend.TxID, item DirectoryItem) error {
	const op = "insert directory item"
	if err := requireID(op, item.ID); err != nil {
		return err
	}
	dirDef, ok := s.meta.Directory(item.Directory)
	if !ok {
		return fmt.Errorf("%s: unknown directory %q", op, item.Directory)
	}
	def, err := s.table(dirDef.Table, metadata.KindDirectory)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	names, params, err := rowParams(def, item.Fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cols := append([]string{querysql.IDColumn, querysql.DocDeletionLabel}, names...)
	args := append([]any{item.ID.String(), boolParam(item.DeletionLabel)}, params...)
	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		def.Name, strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := s.exec(ctx, tx, op, stmt, args...); err != nil {
		return err
	}
	s.forget(ident.TableRef(item.ID, def.Name))
	return nil
}

func (s *Store) forget(ref ident.Reference) {
	if s.cache != nil {
		s.cache.Forget(ref)
	}
}

// ResolvePresentation implements present.Resolver.
//
// Text references resolve to their text. Directory rows resolve to their
// presentation column and documents to their name, falling back to type
// and number. Anything else, including missing rows, resolves to "".
func (s *Store) ResolvePresentation(ctx context.Context, ref ident.Reference) (string, error) {
	if ref.IsEmpty() {
		return "", nil
	}
	if ref.Kind == ident.RefText {
		return ref.Text, nil
	}
	def, ok := s.meta.Table(ref.Table)
	if !ok {
		return "", nil
	}

	switch def.Kind {
	case metadata.KindDirectory:
		if def.Presentation == "" {
			return "", nil
		}
		var text sql.NullString
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", def.Presentation, def.Name, querysql.IDColumn),
			ref.ID.String(),
		).Scan(&text)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("resolve presentation: %w", err)
		}
		return text.String, nil

	case metadata.KindDocument:
		var name, number sql.NullString
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?", querysql.DocName, querysql.DocNumber, def.Name, querysql.IDColumn),
			ref.ID.String(),
		).Scan(&name, &number)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("resolve presentation: %w", err)
		}
		if name.String != "" {
			return name.String, nil
		}
		return strings.TrimSpace(def.Entity + " " + number.String), nil

	default:
		return "", nil
	}
}

func boolParam(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
