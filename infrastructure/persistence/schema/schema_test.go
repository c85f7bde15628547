package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRebind(t *testing.T) {
	q := "SELECT id FROM units WHERE id = ? AND parent_id IN (?, ?)"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT id FROM units WHERE id = $1 AND parent_id IN ($2, $3)", Postgres.Rebind(q))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
}

func TestParseDialect(t *testing.T) {
	d, ok := ParseDialect("Postgres")
	require.True(t, ok)
	assert.Equal(t, "pgx", d.DriverName())

	d, ok = ParseDialect("sqlite3")
	require.True(t, ok)
	assert.Equal(t, "sqlite", d.DriverName())

	_, ok = ParseDialect("mysql")
	assert.False(t, ok)
}

func TestMigrator_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m := NewMigrator()
	applied, err := m.Migrate(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, m.LatestVersion(), applied)

	version, err := m.CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	applied, err = m.Migrate(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Zero(t, applied)

	for _, table := range []string{"units", "raw_facts", "bullet_points", "bullet_point_sources", "bullet_point_raw_refs", "ccirs"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrator_RejectsDuplicates(t *testing.T) {
	m := NewMigrator()
	assert.Error(t, m.RegisterMigration(Migration{Version: 1}))
	assert.Error(t, m.RegisterMigration(Migration{Version: 0}))
	assert.NoError(t, m.RegisterMigration(Migration{Version: 10, Description: "later"}))
	assert.Equal(t, 10, m.LatestVersion())
}
