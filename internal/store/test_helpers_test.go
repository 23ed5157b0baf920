package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/testutil"
)

// createTestStore creates a new store in a temporary file.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testutil.Metadata(t), opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

// seedPrices inserts n record-set rows for owner inside one transaction.
func seedPrices(t *testing.T, s *Store, owner ident.UniqueID, n int) []ident.UniqueID {
	t.Helper()
	ctx := context.Background()
	ids := testutil.NewSequentialIDs()
	clock := testutil.NewDeterministicClock(time.Time{}, time.Minute)

	tx, err := s.BeginTransaction(ctx)
	require.NoError(t, err)

	out := make([]ident.UniqueID, n)
	for i := range n {
		out[i] = ids.Generate()
		err := s.InsertRegisterInformationRecords(ctx, tx, backend.RegisterRecord{
			Table:  testutil.PricesRecords,
			ID:     out[i],
			Period: clock.Next(),
			Owner:  owner,
			Fields: field.NewRow(field.F("price", field.IntNumber(int64(i)))),
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.CommitTransaction(ctx, tx))
	return out
}
