package sqlstore

import (
	"context"
	"encoding/json"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

type ccirRepository struct {
	base
}

const ccirColumns = "id, unit_id, description, keywords, active, created_at"

func (r *ccirRepository) Create(ctx context.Context, ccir *entities.CCIR) (valueobjects.CCIRID, error) {
	ok, err := r.exists(ctx, "unit exists", "units", int64(ccir.UnitID()))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, pkgerrors.NewNotFoundError("unit", int64(ccir.UnitID()))
	}

	keywords, err := json.Marshal(ccir.Keywords())
	if err != nil {
		return 0, pkgerrors.NewInternalError("encode ccir keywords").WithCause(err)
	}

	id, err := r.insertReturningID(ctx, "insert ccir",
		"INSERT INTO ccirs (unit_id, description, keywords, active, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id",
		int64(ccir.UnitID()), ccir.Description(), string(keywords), ccir.Active(), utils.FormatTimestamp(ccir.CreatedAt()))
	if err != nil {
		return 0, err
	}
	ccir.AssignID(valueobjects.CCIRID(id))
	return ccir.ID(), nil
}

func (r *ccirRepository) GetByID(ctx context.Context, id valueobjects.CCIRID) (*entities.CCIR, error) {
	ccir, err := scanCCIR(r.queryRow(ctx, "SELECT "+ccirColumns+" FROM ccirs WHERE id = ?", int64(id)))
	if err != nil {
		return nil, notFoundOr(err, "get ccir", "ccir", int64(id))
	}
	return ccir, nil
}

func (r *ccirRepository) ListByUnit(ctx context.Context, unitID valueobjects.UnitID, activeOnly bool) ([]*entities.CCIR, error) {
	rows, err := r.query(ctx, "list ccirs",
		"SELECT "+ccirColumns+" FROM ccirs WHERE unit_id = ? ORDER BY id", int64(unitID))
	if err != nil {
		return nil, err
	}
	all, err := collect(rows, "list ccirs", scanCCIR)
	if err != nil || !activeOnly {
		return all, err
	}
	active := all[:0]
	for _, c := range all {
		if c.Active() {
			active = append(active, c)
		}
	}
	return active, nil
}

func scanCCIR(s rowScanner) (*entities.CCIR, error) {
	var (
		id, unitID  int64
		description string
		keywords    string
		active      bool
		createdAt   string
	)
	if err := s.Scan(&id, &unitID, &description, &keywords, &active, &createdAt); err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal([]byte(keywords), &list); err != nil {
		return nil, err
	}
	ts, err := utils.ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructCCIR(valueobjects.CCIRID(id), valueobjects.UnitID(unitID), description, list, active, ts), nil
}
