package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
	"github.com/tarachom/accountingstore/internal/testutil"
)

func currenciesQuery() query.Query {
	return *query.New(testutil.CurrenciesTable, "code", "rate", "active", "since", "account", "currency")
}

func TestTablePart_RoundTripAllKinds(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	dirID := testutil.ID(100)
	require.NoError(t, s.InsertDirectoryItem(ctx, backend.NoTx, DirectoryItem{
		Directory: "Currency",
		ID:        dirID,
		Fields:    field.NewRow(field.F("name", field.Text("Hryvnia")), field.F("code", field.Text("UAH"))),
	}))

	id := testutil.ID(1)
	row := field.NewRow(
		field.F("code", field.Text("UAH")),
		field.F("rate", field.MustNumber("41.2575")),
		field.F("active", field.Bool(true)),
		field.F("since", field.At(time.Date(2024, 2, 29, 8, 30, 15, 123456000, time.UTC))),
		field.F("account", field.ID(testutil.ID(7))),
		field.F("currency", field.Reference(ident.TableRef(dirID, testutil.CurrencyTable))),
	)
	require.NoError(t, s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable, row))

	set, join, err := s.SelectConstantsTablePartRecords(ctx, backend.NoTx, currenciesQuery())
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, id, set[0].ID)
	assert.True(t, row.Equal(set[0]), "got %v", set[0].Pairs())

	text, ok := join.Get(id, "currency")
	require.True(t, ok)
	assert.Equal(t, "Hryvnia", text)
}

func TestTablePart_InsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	id := testutil.ID(1)

	require.NoError(t, s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable,
		field.NewRow(field.F("code", field.Text("USD")))))
	require.NoError(t, s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable,
		field.NewRow(field.F("code", field.Text("EUR")))))

	set, _, err := s.SelectConstantsTablePartRecords(ctx, backend.NoTx, currenciesQuery())
	require.NoError(t, err)
	require.Len(t, set, 1)
	code, _ := set[0].Get("code")
	assert.Equal(t, field.Text("EUR"), code)
}

func TestTablePart_RemoveAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.InsertConstantsTablePartRecords(ctx, backend.NoTx, testutil.ID(i), testutil.CurrenciesTable,
			field.NewRow(field.F("code", field.Text("C")))))
	}

	require.NoError(t, s.RemoveConstantsTablePartRecords(ctx, backend.NoTx, testutil.ID(2), testutil.CurrenciesTable))
	exists, err := s.IsExistUniqueID(ctx, backend.NoTx, testutil.ID(2), testutil.CurrenciesTable)
	require.NoError(t, err)
	assert.False(t, exists)

	set, _, err := s.SelectConstantsTablePartRecords(ctx, backend.NoTx, currenciesQuery())
	require.NoError(t, err)
	assert.Len(t, set, 2)

	require.NoError(t, s.DeleteConstantsTablePartRecords(ctx, backend.NoTx, testutil.CurrenciesTable))
	set, _, err = s.SelectConstantsTablePartRecords(ctx, backend.NoTx, currenciesQuery())
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestTablePart_Rejections(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	id := testutil.ID(1)

	err := s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, "tab_zz", field.NewRow())
	assert.ErrorIs(t, err, backend.ErrUnknownTable)

	err = s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.PricesRecords, field.NewRow())
	assert.ErrorIs(t, err, backend.ErrUnknownTable, "wrong table kind")

	err = s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable,
		field.NewRow(field.F("missing", field.Text("x"))))
	assert.ErrorContains(t, err, `unknown column "missing"`)

	err = s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable,
		field.NewRow(field.F("rate", field.Text("x"))))
	assert.ErrorContains(t, err, "expects number, got text")

	err = s.InsertConstantsTablePartRecords(ctx, backend.NoTx, ident.Empty, testutil.CurrenciesTable, field.NewRow())
	assert.ErrorContains(t, err, "identity is empty")

	err = s.InsertConstantsTablePartRecords(ctx, backend.TxID(999), id, testutil.CurrenciesTable, field.NewRow())
	assert.ErrorIs(t, err, backend.ErrUnknownTx)
}

func TestTablePart_NullValues(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	id := testutil.ID(1)

	require.NoError(t, s.InsertConstantsTablePartRecords(ctx, backend.NoTx, id, testutil.CurrenciesTable,
		field.NewRow(field.F("code", field.Text("X")), field.F("rate", nil))))

	set, join, err := s.SelectConstantsTablePartRecords(ctx, backend.NoTx, currenciesQuery())
	require.NoError(t, err)
	require.Len(t, set, 1)
	rate, _ := set[0].Get("rate")
	assert.Equal(t, field.Null{}, rate)
	currency, _ := set[0].Get("currency")
	assert.Equal(t, field.Null{}, currency)
	assert.Empty(t, join)
}

func TestRegisterObject_InsertSelectUpdate(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec := backend.RegisterRecord{
		Table:     testutil.PricesObject,
		ID:        testutil.ID(1),
		Period:    day(5),
		Owner:     testutil.ID(50),
		OwnerType: "Invoice",
		Fields:    field.NewRow(field.F("price", field.MustNumber("10.5")), field.F("note", field.Text("first"))),
	}
	ok, err := s.InsertRegisterInformationObject(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.InsertRegisterInformationObject(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok, "duplicate insert must not write")

	got, err := s.SelectRegisterInformationObject(ctx, backend.NoTx, rec.ID, testutil.PricesObject, []string{"price", "note"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, day(5), got.Period)
	assert.Equal(t, rec.Owner, got.Owner)
	assert.Equal(t, "Invoice", got.OwnerType)
	assert.True(t, rec.Fields.Equal(got.Fields))

	rec.Fields = field.NewRow(field.F("price", field.MustNumber("12")))
	ok, err = s.UpdateRegisterInformationObject(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.SelectRegisterInformationObject(ctx, backend.NoTx, rec.ID, testutil.PricesObject, []string{"price"})
	require.NoError(t, err)
	price, _ := got.Fields.Get("price")
	assert.True(t, field.Equal(field.MustNumber("12"), price))
}

func TestRegisterObject_UpdateMissingReportsFalse(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec := backend.RegisterRecord{Table: testutil.PricesObject, ID: testutil.ID(1), Period: day(1)}
	_, err := s.InsertRegisterInformationObject(ctx, rec)
	require.NoError(t, err)
	require.NoError(t, s.DeleteRegisterInformationObject(ctx, backend.NoTx, testutil.PricesObject, rec.ID))

	ok, err := s.UpdateRegisterInformationObject(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.SelectRegisterInformationObject(ctx, backend.NoTx, rec.ID, testutil.PricesObject, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegisterRecords_FilterAndDeleteByOwner(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	ownerA, ownerB := testutil.ID(900), testutil.ID(901)
	for i, owner := range []ident.UniqueID{ownerA, ownerA, ownerB} {
		require.NoError(t, s.InsertRegisterInformationRecords(ctx, backend.NoTx, backend.RegisterRecord{
			Table:  testutil.PricesRecords,
			ID:     testutil.ID(uint64(i + 1)),
			Period: day(i + 1),
			Owner:  owner,
			Fields: field.NewRow(field.F("price", field.IntNumber(int64(i)))),
		}))
	}

	q := query.New(testutil.PricesRecords, "period", "owner", "price").
		Filter("owner", query.EQ, field.ID(ownerA)).
		OrderBy("period", true)
	set, _, err := s.SelectRegisterInformationRecords(ctx, backend.NoTx, *q)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, testutil.ID(2), set[0].ID, "descending period")

	require.NoError(t, s.DeleteRegisterInformationRecords(ctx, backend.NoTx, testutil.PricesRecords, ownerA))
	set, _, err = s.SelectRegisterInformationRecords(ctx, backend.NoTx, *query.New(testutil.PricesRecords, "owner"))
	require.NoError(t, err)
	require.Len(t, set, 1)
	owner, _ := set[0].Get("owner")
	assert.Equal(t, field.ID(ownerB), owner)

	require.NoError(t, s.RemoveRegisterInformationRecords(ctx, backend.NoTx, testutil.ID(3), testutil.PricesRecords))
	exists, err := s.IsExistUniqueID(ctx, backend.NoTx, testutil.ID(3), testutil.PricesRecords)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsExistUniqueID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	exists, err := s.IsExistUniqueID(ctx, backend.NoTx, ident.Empty, testutil.CurrenciesTable)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.IsExistUniqueID(ctx, backend.NoTx, testutil.ID(1), "tab_zz")
	assert.ErrorIs(t, err, backend.ErrUnknownTable)
}
