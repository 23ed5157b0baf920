package register

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/store"
	"github.com/tarachom/accountingstore/internal/testutil"
)

// newTestKernel opens a store in a temporary file and binds a kernel with
// sequential identities to it.
func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	meta := testutil.Metadata(t)
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), meta)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	k, err := kernel.New(s, meta, kernel.WithGenerator(testutil.NewSequentialIDs()))
	require.NoError(t, err)
	return k
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 9, 30, 0, 0, time.UTC)
}
