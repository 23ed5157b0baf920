// Package fixture loads YAML seed files of documents and directory items
// and writes them through the store.
//
// Field values are written as strings and parsed according to the kind
// the metadata declares for the column:
//
//	documents:
//	  - type: Invoice
//	    name: Invoice 1
//	    number: "00001"
//	    date: 2024-01-05T10:00:00Z
//	    spend: true
//	    fields: {sum: "100.50"}
//	directories:
//	  - type: Currency
//	    fields: {name: UAH, code: "980"}
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/store"
)

// File is one parsed seed file.
type File struct {
	Documents   []Document      `yaml:"documents,omitempty"`
	Directories []DirectoryItem `yaml:"directories,omitempty"`
}

// Document is a document header plus its field values.
type Document struct {
	// Type is the declared document name.
	Type string `yaml:"type"`
	// ID is optional; an identity is generated when empty.
	ID            string            `yaml:"id,omitempty"`
	Name          string            `yaml:"name"`
	Number        string            `yaml:"number"`
	Date          time.Time         `yaml:"date"`
	DeletionLabel bool              `yaml:"deletion_label,omitempty"`
	Spend         bool              `yaml:"spend,omitempty"`
	SpendDate     *time.Time        `yaml:"spend_date,omitempty"`
	Fields        map[string]string `yaml:"fields,omitempty"`
}

// DirectoryItem is one directory row.
type DirectoryItem struct {
	// Type is the declared directory name.
	Type          string            `yaml:"type"`
	ID            string            `yaml:"id,omitempty"`
	DeletionLabel bool              `yaml:"deletion_label,omitempty"`
	Fields        map[string]string `yaml:"fields,omitempty"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validate(f *File) error {
	for i, d := range f.Documents {
		if d.Type == "" {
			return fmt.Errorf("documents[%d]: type is required", i)
		}
		if d.Date.IsZero() {
			return fmt.Errorf("documents[%d]: date is required", i)
		}
	}
	for i, d := range f.Directories {
		if d.Type == "" {
			return fmt.Errorf("directories[%d]: type is required", i)
		}
	}
	return nil
}

// Writer is the part of the store a fixture is applied through.
type Writer interface {
	BeginTransaction(ctx context.Context) (backend.TxID, error)
	CommitTransaction(ctx context.Context, tx backend.TxID) error
	RollbackTransaction(ctx context.Context, tx backend.TxID) error
	InsertDocument(ctx context.Context, tx backend.TxID, doc store.DocumentRecord) error
	InsertDirectoryItem(ctx context.Context, tx backend.TxID, item store.DirectoryItem) error
}

// Result reports the identities written by Apply, in file order.
type Result struct {
	Documents   []ident.UniqueID
	Directories []ident.UniqueID
}

// Option configures Apply.
type Option func(*applier)

// WithGenerator sets the generator for rows without an id.
func WithGenerator(g ident.Generator) Option {
	return func(a *applier) {
		if g != nil {
			a.ids = g
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *applier) {
		if l != nil {
			a.logger = l
		}
	}
}

type applier struct {
	meta   *metadata.Configuration
	ids    ident.Generator
	logger *slog.Logger
}

// Apply writes every row of f in one transaction. Directory items go
// first so documents may reference them. Nothing is written when any row
// fails.
func Apply(ctx context.Context, w Writer, meta *metadata.Configuration, f *File, opts ...Option) (res Result, err error) {
	a := &applier{meta: meta, ids: ident.UUIDv7Generator{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	tx, err := w.BeginTransaction(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("apply fixture: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := w.RollbackTransaction(ctx, tx); rbErr != nil {
				a.logger.Error("fixture rollback failed", "error", rbErr)
			}
		}
	}()

	for i, d := range f.Directories {
		item, err := a.directoryItem(d)
		if err != nil {
			return Result{}, fmt.Errorf("directories[%d]: %w", i, err)
		}
		if err := w.InsertDirectoryItem(ctx, tx, item); err != nil {
			return Result{}, fmt.Errorf("directories[%d]: %w", i, err)
		}
		res.Directories = append(res.Directories, item.ID)
	}
	for i, d := range f.Documents {
		doc, err := a.document(d)
		if err != nil {
			return Result{}, fmt.Errorf("documents[%d]: %w", i, err)
		}
		if err := w.InsertDocument(ctx, tx, doc); err != nil {
			return Result{}, fmt.Errorf("documents[%d]: %w", i, err)
		}
		res.Documents = append(res.Documents, doc.ID)
	}

	if err := w.CommitTransaction(ctx, tx); err != nil {
		return Result{}, fmt.Errorf("apply fixture: %w", err)
	}
	a.logger.Info("fixture applied",
		"documents", len(res.Documents),
		"directories", len(res.Directories))
	return res, nil
}

func (a *applier) document(d Document) (store.DocumentRecord, error) {
	docDef, ok := a.meta.Document(d.Type)
	if !ok {
		return store.DocumentRecord{}, fmt.Errorf("unknown document type %q", d.Type)
	}
	def, _ := a.meta.Table(docDef.Table)
	id, err := a.identity(d.ID)
	if err != nil {
		return store.DocumentRecord{}, err
	}
	row, err := parseFields(def, d.Fields)
	if err != nil {
		return store.DocumentRecord{}, err
	}

	doc := store.DocumentRecord{
		Type:          d.Type,
		ID:            id,
		Name:          d.Name,
		Number:        d.Number,
		Date:          d.Date.UTC(),
		DeletionLabel: d.DeletionLabel,
		Spend:         d.Spend,
		Fields:        row,
	}
	switch {
	case d.SpendDate != nil:
		doc.SpendDate = d.SpendDate.UTC()
	case d.Spend:
		doc.SpendDate = doc.Date
	}
	return doc, nil
}

func (a *applier) directoryItem(d DirectoryItem) (store.DirectoryItem, error) {
	dirDef, ok := a.meta.Directory(d.Type)
	if !ok {
		return store.DirectoryItem{}, fmt.Errorf("unknown directory %q", d.Type)
	}
	def, _ := a.meta.Table(dirDef.Table)
	id, err := a.identity(d.ID)
	if err != nil {
		return store.DirectoryItem{}, err
	}
	row, err := parseFields(def, d.Fields)
	if err != nil {
		return store.DirectoryItem{}, err
	}
	return store.DirectoryItem{
		Directory:     d.Type,
		ID:            id,
		DeletionLabel: d.DeletionLabel,
		Fields:        row,
	}, nil
}

func (a *applier) identity(s string) (ident.UniqueID, error) {
	if s == "" {
		return a.ids.Generate(), nil
	}
	return ident.Parse(s)
}

// parseFields builds a row in declared column order.
func parseFields(def metadata.TableDef, values map[string]string) (field.Row, error) {
	var row field.Row
	declared := def.ColumnNames()
	for name := range values {
		if !slices.Contains(declared, name) {
			return field.Row{}, fmt.Errorf("table %s: unknown field %q", def.Name, name)
		}
	}
	for _, col := range def.Columns {
		s, ok := values[col.Name]
		if !ok {
			continue
		}
		v, err := field.Parse(col.Kind, s)
		if err != nil {
			return field.Row{}, fmt.Errorf("field %q: %w", col.Name, err)
		}
		row.Set(col.Name, v)
	}
	return row, nil
}
