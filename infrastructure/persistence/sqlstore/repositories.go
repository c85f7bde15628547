package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"provenance-backend/application/ports"
	"provenance-backend/infrastructure/persistence/schema"
	pkgerrors "provenance-backend/pkg/errors"
)

// queryer is satisfied by *sql.Tx and *sql.DB.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// repositories binds every repository to one transaction.
type repositories struct {
	units      *unitRepository
	rawFacts   *rawFactRepository
	bullets    *bulletPointRepository
	provenance *provenanceRepository
	ccirs      *ccirRepository
}

var _ ports.Repositories = (*repositories)(nil)

func newRepositories(q queryer, d schema.Dialect) *repositories {
	b := base{q: q, d: d}
	return &repositories{
		units:      &unitRepository{base: b},
		rawFacts:   &rawFactRepository{base: b},
		bullets:    &bulletPointRepository{base: b},
		provenance: &provenanceRepository{base: b},
		ccirs:      &ccirRepository{base: b},
	}
}

func (r *repositories) Units() ports.UnitRepository               { return r.units }
func (r *repositories) RawFacts() ports.RawFactRepository         { return r.rawFacts }
func (r *repositories) BulletPoints() ports.BulletPointRepository { return r.bullets }
func (r *repositories) Provenance() ports.ProvenanceRepository    { return r.provenance }
func (r *repositories) CCIRs() ports.CCIRRepository               { return r.ccirs }

// base holds what every repository needs to issue statements.
type base struct {
	q queryer
	d schema.Dialect
}

func (b base) exec(ctx context.Context, op, query string, args ...interface{}) (sql.Result, error) {
	res, err := b.q.ExecContext(ctx, b.d.Rebind(query), args...)
	if err != nil {
		return nil, pkgerrors.NewTransactionError(op, err)
	}
	return res, nil
}

func (b base) query(ctx context.Context, op, query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := b.q.QueryContext(ctx, b.d.Rebind(query), args...)
	if err != nil {
		return nil, pkgerrors.NewTransactionError(op, err)
	}
	return rows, nil
}

func (b base) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return b.q.QueryRowContext(ctx, b.d.Rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (b base) insertReturningID(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := b.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, pkgerrors.NewTransactionError(op, err)
	}
	return id, nil
}

func (b base) exists(ctx context.Context, op, table string, id int64) (bool, error) {
	var one int
	err := b.queryRow(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.NewTransactionError(op, err)
	}
	return true, nil
}

// notFoundOr maps sql.ErrNoRows onto a not found error.
func notFoundOr(err error, op, resource string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.NewNotFoundError(resource, id)
	}
	return pkgerrors.NewTransactionError(op, err)
}

func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, pkgerrors.NewTransactionError(op, err)
	}
	return n, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, op string, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, pkgerrors.NewTransactionError(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewTransactionError(op, err)
	}
	return out, nil
}
