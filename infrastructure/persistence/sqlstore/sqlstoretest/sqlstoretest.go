// Package sqlstoretest opens throwaway in-memory stores for tests.
package sqlstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"provenance-backend/infrastructure/persistence/sqlstore"
)

// DSN is a private in-memory SQLite database with foreign keys enforced.
const DSN = "file::memory:?_pragma=foreign_keys(1)"

// New returns a migrated in-memory store that is closed when t ends.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, "sqlite", DSN, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(ctx))
	return store
}
