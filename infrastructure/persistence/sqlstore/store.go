// Package sqlstore implements the provenance repositories on database/sql.
// SQLite (modernc.org/sqlite) is the default engine; Postgres is reached
// through the pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"provenance-backend/infrastructure/persistence/schema"
)

// Store owns the connection pool and hands out transaction-scoped repositories.
type Store struct {
	db      *sql.DB
	dialect schema.Dialect
	logger  *zap.Logger

	// writeMu serializes Do within the process.
	writeMu sync.Mutex
}

// Open connects to driver/dsn and verifies the connection. The schema is
// not touched; call Migrate for that.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	dialect, ok := schema.ParseDialect(driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dialect == schema.SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == schema.SQLite {
		// One connection: an in-memory database lives and dies with it, and
		// SQLite allows a single writer anyway.
		db.SetMaxOpenConns(1)
		if !strings.Contains(dsn, ":memory:") {
			if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
				logger.Warn("Could not enable WAL journal", zap.Error(err))
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	logger.Info("Database connected", zap.String("dialect", string(dialect)))
	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// sqliteDSN adds the foreign_keys pragma to dsn unless it already sets one.
// The driver applies DSN pragmas on every new connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Migrate brings the schema to the latest version.
func (s *Store) Migrate(ctx context.Context) error {
	applied, err := schema.NewMigrator().Migrate(ctx, s.db, s.dialect)
	if err != nil {
		return err
	}
	if applied > 0 {
		s.logger.Info("Applied schema migrations", zap.Int("count", applied))
	}
	return nil
}

// SchemaVersion reports the applied schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return schema.NewMigrator().CurrentVersion(ctx, s.db)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dialect() schema.Dialect { return s.dialect }

// DB exposes the pool for health checks and tests.
func (s *Store) DB() *sql.DB { return s.db }
