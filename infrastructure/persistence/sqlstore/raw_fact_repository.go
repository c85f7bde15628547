package sqlstore

import (
	"context"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

type rawFactRepository struct {
	base
}

const rawFactColumns = "id, unit_id, content, source_type, created_at"

func (r *rawFactRepository) Create(ctx context.Context, fact *entities.RawFact) (valueobjects.RawFactID, error) {
	ok, err := r.exists(ctx, "unit exists", "units", int64(fact.UnitID()))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, pkgerrors.NewNotFoundError("unit", int64(fact.UnitID()))
	}

	id, err := r.insertReturningID(ctx, "insert raw fact",
		"INSERT INTO raw_facts (unit_id, content, source_type, created_at) VALUES (?, ?, ?, ?) RETURNING id",
		int64(fact.UnitID()), fact.Content().String(), fact.SourceType(), utils.FormatTimestamp(fact.CreatedAt()))
	if err != nil {
		return 0, err
	}
	fact.AssignID(valueobjects.RawFactID(id))
	return fact.ID(), nil
}

func (r *rawFactRepository) GetByID(ctx context.Context, id valueobjects.RawFactID) (*entities.RawFact, error) {
	fact, err := scanRawFact(r.queryRow(ctx, "SELECT "+rawFactColumns+" FROM raw_facts WHERE id = ?", int64(id)))
	if err != nil {
		return nil, notFoundOr(err, "get raw fact", "raw fact", int64(id))
	}
	return fact, nil
}

func (r *rawFactRepository) Exists(ctx context.Context, id valueobjects.RawFactID) (bool, error) {
	return r.exists(ctx, "raw fact exists", "raw_facts", int64(id))
}

func (r *rawFactRepository) ListByUnit(ctx context.Context, unitID valueobjects.UnitID) ([]*entities.RawFact, error) {
	rows, err := r.query(ctx, "list raw facts",
		"SELECT "+rawFactColumns+" FROM raw_facts WHERE unit_id = ? ORDER BY id", int64(unitID))
	if err != nil {
		return nil, err
	}
	return collect(rows, "list raw facts", scanRawFact)
}

func scanRawFact(s rowScanner) (*entities.RawFact, error) {
	var (
		id, unitID          int64
		content, sourceType string
		createdAt           string
	)
	if err := s.Scan(&id, &unitID, &content, &sourceType, &createdAt); err != nil {
		return nil, err
	}
	ts, err := utils.ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructRawFact(
		valueobjects.RawFactID(id), valueobjects.UnitID(unitID),
		valueobjects.ContentFromStore(content), sourceType, ts,
	), nil
}
