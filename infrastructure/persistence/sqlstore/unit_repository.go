package sqlstore

import (
	"context"
	"database/sql"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

type unitRepository struct {
	base
}

const unitColumns = "id, name, echelon_level, parent_id, created_at"

func (r *unitRepository) Create(ctx context.Context, unit *entities.Unit) (valueobjects.UnitID, error) {
	var parent sql.NullInt64
	if p := unit.ParentID(); p != nil {
		ok, err := r.Exists(ctx, *p)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, pkgerrors.NewNotFoundError("parent unit", int64(*p))
		}
		parent = sql.NullInt64{Int64: int64(*p), Valid: true}
	}

	id, err := r.insertReturningID(ctx, "insert unit",
		"INSERT INTO units (name, echelon_level, parent_id, created_at) VALUES (?, ?, ?, ?) RETURNING id",
		unit.Name(), unit.EchelonLevel().String(), parent, utils.FormatTimestamp(unit.CreatedAt()))
	if err != nil {
		return 0, err
	}
	unit.AssignID(valueobjects.UnitID(id))
	return unit.ID(), nil
}

func (r *unitRepository) GetByID(ctx context.Context, id valueobjects.UnitID) (*entities.Unit, error) {
	row := r.queryRow(ctx, "SELECT "+unitColumns+" FROM units WHERE id = ?", int64(id))
	unit, err := scanUnit(row)
	if err != nil {
		return nil, notFoundOr(err, "get unit", "unit", int64(id))
	}
	return unit, nil
}

func (r *unitRepository) Exists(ctx context.Context, id valueobjects.UnitID) (bool, error) {
	return r.exists(ctx, "unit exists", "units", int64(id))
}

func (r *unitRepository) List(ctx context.Context) ([]*entities.Unit, error) {
	rows, err := r.query(ctx, "list units", "SELECT "+unitColumns+" FROM units ORDER BY id")
	if err != nil {
		return nil, err
	}
	return collect(rows, "list units", scanUnit)
}

func scanUnit(s rowScanner) (*entities.Unit, error) {
	var (
		id        int64
		name      string
		echelon   string
		parent    sql.NullInt64
		createdAt string
	)
	if err := s.Scan(&id, &name, &echelon, &parent, &createdAt); err != nil {
		return nil, err
	}
	ts, err := utils.ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	var parentID *valueobjects.UnitID
	if parent.Valid {
		p := valueobjects.UnitID(parent.Int64)
		parentID = &p
	}
	return entities.ReconstructUnit(valueobjects.UnitID(id), name, valueobjects.EchelonLevel(echelon), parentID, ts), nil
}
