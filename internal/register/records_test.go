package register

import (
	"context"
	"errors"
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

func newPriceRecords(t *testing.T) *RecordsSet {
	t.Helper()
	r, err := NewRecordsSet(newTestKernel(t), testutil.PricesRecords)
	require.NoError(t, err)
	return r
}

// seed inserts n records for owner in one transaction, one minute apart.
func seed(t *testing.T, r *RecordsSet, owner ident.UniqueID, n int) []ident.UniqueID {
	t.Helper()
	ctx := context.Background()
	clock := testutil.NewDeterministicClock(time.Time{}, time.Minute)

	ids := make([]ident.UniqueID, n)
	err := r.InTransaction(ctx, func(ctx context.Context) error {
		for i := range n {
			id, err := r.Save(ctx, ident.Empty, clock.Next(), owner,
				field.NewRow(field.F("price", field.IntNumber(int64(i)))))
			if err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func TestNewRecordsSet(t *testing.T) {
	k := newTestKernel(t)

	r, err := NewRecordsSet(k, testutil.PricesRecords)
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "owner", "price", "currency", "note"}, r.Query().Fields)

	r, err = NewRecordsSet(k, testutil.PricesRecords, "note")
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "owner", "note"}, r.Query().Fields)

	_, err = NewRecordsSet(k, testutil.PricesObject)
	assert.ErrorIs(t, err, backend.ErrUnknownTable)
}

func TestRecordsSet_SaveRead(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	owner := testutil.ID(500)

	id, err := r.Save(ctx, ident.Empty, day(2), owner, field.NewRow(
		field.F("price", field.MustNumber("3.25")),
		field.F("currency", field.Reference(ident.TextRef(testutil.ID(501), "hryvnia"))),
	))
	require.NoError(t, err)

	require.NoError(t, r.Read(ctx))
	assert.True(t, r.IsRead)
	require.Len(t, r.Records, 1)

	row := r.Records[0]
	assert.Equal(t, id, row.ID)
	period, _ := row.Get("period")
	require.IsType(t, field.Timestamp{}, period)
	assert.True(t, period.(field.Timestamp).Equal(day(2)))
	got, _ := row.Get("owner")
	assert.Equal(t, field.ID(owner), got)

	text, ok := r.JoinValue.Get(id, "currency")
	require.True(t, ok)
	assert.Equal(t, "hryvnia", text)
}

func TestRecordsSet_ReadFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	seed(t, r, testutil.ID(600), 3)
	seed(t, r, testutil.ID(601), 2)

	r.Query().Filter("owner", query.EQ, field.ID(testutil.ID(601)))
	require.NoError(t, r.Read(ctx))
	assert.Len(t, r.Records, 2)
}

func TestRecordsSet_SplitSelectToPages(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	ids := seed(t, r, testutil.ID(700), 2500)

	split, err := r.SplitSelectToPages(ctx, ids[1500], 0)
	require.NoError(t, err)
	assert.Equal(t, 2500, split.Records)
	assert.Equal(t, 3, split.Pages)
	assert.Equal(t, DefaultPageSize, split.PageSize)
	assert.Equal(t, 2, split.CurrentPage)

	split, err = r.SplitSelectToPages(ctx, ident.Empty, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, split.CurrentPage)

	require.NoError(t, r.ReadPage(ctx, 3, 1000))
	assert.Len(t, r.Records, 500)
	assert.Equal(t, ids[2000], r.Records[0].ID)

	require.NoError(t, r.ReadPage(ctx, 1, 0))
	assert.Len(t, r.Records, DefaultPageSize)

	err = r.ReadPage(ctx, 1, -5)
	assert.ErrorIs(t, err, backend.ErrInvalidPageSize)
}

func TestRecordsSet_Remove(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	ids := seed(t, r, testutil.ID(800), 3)

	require.NoError(t, r.Remove(ctx, ident.Empty))
	require.NoError(t, r.Remove(ctx, testutil.ID(999)))
	require.NoError(t, r.Remove(ctx, ids[1]))

	require.NoError(t, r.Read(ctx))
	require.Len(t, r.Records, 2)
	_, found := r.Records.Find(ids[1])
	assert.False(t, found)
}

func TestRecordsSet_DeleteByOwner(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	seed(t, r, testutil.ID(810), 4)
	keep := seed(t, r, testutil.ID(811), 1)

	require.NoError(t, r.DeleteByOwner(ctx, testutil.ID(810)))
	require.NoError(t, r.Read(ctx))
	require.Len(t, r.Records, 1)
	assert.Equal(t, keep[0], r.Records[0].ID)
}

func TestRecordsSet_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)

	require.NoError(t, r.BeginTransaction(ctx))
	assert.True(t, r.Tx().Active())
	_, err := r.Save(ctx, ident.Empty, day(1), testutil.ID(1), field.NewRow())
	require.NoError(t, err)

	err = r.BeginTransaction(ctx)
	assert.ErrorIs(t, err, backend.ErrTransactionActive)

	require.NoError(t, r.RollbackTransaction(ctx))
	assert.Equal(t, backend.NoTx, r.Tx())

	require.NoError(t, r.Read(ctx))
	assert.Empty(t, r.Records)

	err = r.CommitTransaction(ctx)
	assert.ErrorIs(t, err, backend.ErrNoTransaction)
}

func TestRecordsSet_InTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	boom := errors.New("boom")

	err := r.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.Save(ctx, ident.Empty, day(1), testutil.ID(1), field.NewRow()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, backend.NoTx, r.Tx())

	require.NoError(t, r.Read(ctx))
	assert.Empty(t, r.Records)
}

func TestRecordsSet_SaveThenRemoveInTransaction(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)

	require.NoError(t, r.BeginTransaction(ctx))
	id, err := r.Save(ctx, ident.Empty, day(1), testutil.ID(1), field.NewRow())
	require.NoError(t, err)

	split, err := r.SplitSelectToPages(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, split.Records)
	assert.Equal(t, 1, split.CurrentPage)

	require.NoError(t, r.Remove(ctx, id))
	require.NoError(t, r.Read(ctx))
	assert.Empty(t, r.Records)
	require.NoError(t, r.CommitTransaction(ctx))

	require.NoError(t, r.Read(ctx))
	assert.Empty(t, r.Records)
}

func TestRecordsSet_WriterHeldByAnotherComponent(t *testing.T) {
	ctx := context.Background()
	r := newPriceRecords(t)
	o, err := NewObject(r.k, testutil.PricesObject)
	require.NoError(t, err)

	require.NoError(t, r.BeginTransaction(ctx))

	o.New()
	err = o.Save(ctx)
	assert.True(t, backend.IsWriterBusy(err))
	assert.False(t, o.IsSaved)

	err = o.BeginTransaction(ctx)
	assert.ErrorIs(t, err, backend.ErrWriterBusy)
	assert.Equal(t, backend.NoTx, o.Tx())

	other, err := NewRecordsSet(r.k, testutil.PricesRecords)
	require.NoError(t, err)
	_, err = other.Save(ctx, ident.Empty, day(2), testutil.ID(2), field.NewRow())
	assert.ErrorIs(t, err, backend.ErrWriterBusy)

	require.NoError(t, r.CommitTransaction(ctx))

	require.NoError(t, o.Save(ctx), "writer is free after commit")
	assert.True(t, o.IsSaved)
}
