package fixture

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
	"github.com/tarachom/accountingstore/internal/store"
	"github.com/tarachom/accountingstore/internal/testutil"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), testutil.Metadata(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)

	require.Len(t, f.Directories, 1)
	assert.Equal(t, "Currency", f.Directories[0].Type)
	assert.Equal(t, "980", f.Directories[0].Fields["code"])

	require.Len(t, f.Documents, 2)
	assert.Equal(t, "Invoice", f.Documents[0].Type)
	assert.True(t, f.Documents[0].Date.Equal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)))
	assert.True(t, f.Documents[1].Spend)
	assert.Empty(t, f.Documents[1].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read fixture file")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown key",
			yaml: "documents:\n  - type: Invoice\n    date: 2024-01-01T00:00:00Z\n    nmae: x\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing type",
			yaml: "documents:\n  - name: x\n    date: 2024-01-01T00:00:00Z\n",
			want: "documents[0]: type is required",
		},
		{
			name: "missing date",
			yaml: "documents:\n  - type: Invoice\n",
			want: "documents[0]: date is required",
		},
		{
			name: "directory without type",
			yaml: "directories:\n  - fields: {name: x}\n",
			want: "directories[0]: type is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	f, err := Load(filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)

	res, err := Apply(ctx, s, s.Meta(), f, WithGenerator(testutil.NewSequentialIDs()))
	require.NoError(t, err)
	require.Len(t, res.Directories, 1)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, testutil.ID(0x101), res.Directories[0])
	assert.Equal(t, testutil.ID(0x201), res.Documents[0])
	assert.Equal(t, testutil.ID(1), res.Documents[1])

	text, err := s.ResolvePresentation(ctx, ident.TableRef(res.Directories[0], testutil.CurrencyTable))
	require.NoError(t, err)
	assert.Equal(t, "Hryvnia", text)

	posted := true
	pointers, err := s.SelectJournalDocumentPointer(ctx, backend.JournalFilter{
		Tables:      []string{testutil.InvoiceTable, testutil.ReceiptTable},
		Types:       []string{"Invoice", "Receipt"},
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Posted:      &posted,
	})
	require.NoError(t, err)
	require.Len(t, pointers, 1)
	assert.Equal(t, "Receipt 1", pointers[0].Name)
	assert.True(t, pointers[0].SpendDate.Equal(pointers[0].Date), "spend date defaults to the document date")
}

func TestApply_RollsBackOnBadField(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	f, err := Parse([]byte(`
directories:
  - type: Currency
    fields: {name: Euro}
documents:
  - type: Invoice
    date: 2024-01-05T10:00:00Z
    fields: {sum: "not a number"}
`))
	require.NoError(t, err)

	_, err = Apply(ctx, s, s.Meta(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `documents[0]: field "sum"`)
	assert.Zero(t, s.OpenTransactions())

	rows, _, err := s.Select(ctx, *query.New(testutil.CurrencyTable, "name"))
	require.NoError(t, err)
	assert.Empty(t, rows, "directory item must be rolled back")
}

func TestApply_UnknownNames(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := Apply(ctx, s, s.Meta(), &File{Documents: []Document{{Type: "Order", Date: time.Now()}}})
	assert.ErrorContains(t, err, `unknown document type "Order"`)

	_, err = Apply(ctx, s, s.Meta(), &File{Directories: []DirectoryItem{{Type: "Currency", Fields: map[string]string{"rate": "1"}}}})
	assert.ErrorContains(t, err, `unknown field "rate"`)

	_, err = Apply(ctx, s, s.Meta(), &File{Directories: []DirectoryItem{{Type: "Currency", ID: "nope"}}})
	assert.Error(t, err)
}
