package sqlstore

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"provenance-backend/application/ports"
	"provenance-backend/infrastructure/persistence/schema"
	pkgerrors "provenance-backend/pkg/errors"
)

var _ ports.UnitOfWork = (*Store)(nil)

// writeLockKey is the Postgres advisory lock that serializes writers
// across processes sharing one database.
const writeLockKey int64 = 0x70726f76

// Do runs fn in a write transaction. Writers are serialized: in process by
// writeMu, across processes by an advisory lock on Postgres and by the
// single SQLite writer.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.NewTransactionError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				s.logger.Warn("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if s.dialect == schema.Postgres {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind("SELECT pg_advisory_xact_lock(?)"), writeLockKey); err != nil {
			return pkgerrors.NewTransactionError("acquire write lock", err)
		}
	}

	if err := fn(ctx, newRepositories(tx, s.dialect)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return pkgerrors.NewTransactionError("commit", err)
	}
	committed = true
	return nil
}

// View runs fn against a read snapshot. On Postgres the snapshot is a
// read-only REPEATABLE READ transaction; on SQLite the single connection
// already excludes concurrent writers.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	var opts *sql.TxOptions
	if s.dialect == schema.Postgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return pkgerrors.NewTransactionError("begin read", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(ctx, newRepositories(tx, s.dialect))
}
