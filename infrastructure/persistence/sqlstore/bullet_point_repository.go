package sqlstore

import (
	"context"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/infrastructure/persistence/schema"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

type bulletPointRepository struct {
	base
}

const bulletColumns = "id, unit_id, echelon_level, content, validity_status, created_at"

func (r *bulletPointRepository) Create(ctx context.Context, bullet *entities.BulletPoint) (valueobjects.BulletPointID, error) {
	id, err := r.insertReturningID(ctx, "insert bullet point",
		"INSERT INTO bullet_points (unit_id, echelon_level, content, validity_status, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id",
		int64(bullet.UnitID()), bullet.EchelonLevel().String(), bullet.Content().String(),
		bullet.Validity().String(), utils.FormatTimestamp(bullet.CreatedAt()))
	if err != nil {
		return 0, err
	}
	bullet.AssignID(valueobjects.BulletPointID(id))
	return bullet.ID(), nil
}

func (r *bulletPointRepository) GetByID(ctx context.Context, id valueobjects.BulletPointID) (*entities.BulletPoint, error) {
	bullet, err := scanBulletPoint(r.queryRow(ctx, "SELECT "+bulletColumns+" FROM bullet_points WHERE id = ?", int64(id)))
	if err != nil {
		return nil, notFoundOr(err, "get bullet point", "bullet point", int64(id))
	}
	return bullet, nil
}

func (r *bulletPointRepository) Exists(ctx context.Context, id valueobjects.BulletPointID) (bool, error) {
	return r.exists(ctx, "bullet point exists", "bullet_points", int64(id))
}

func (r *bulletPointRepository) List(ctx context.Context) ([]*entities.BulletPoint, error) {
	rows, err := r.query(ctx, "list bullet points", "SELECT "+bulletColumns+" FROM bullet_points ORDER BY id")
	if err != nil {
		return nil, err
	}
	return collect(rows, "list bullet points", scanBulletPoint)
}

func (r *bulletPointRepository) ListByUnits(ctx context.Context, unitIDs []valueobjects.UnitID) ([]*entities.BulletPoint, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(unitIDs))
	for i, id := range unitIDs {
		args[i] = int64(id)
	}
	rows, err := r.query(ctx, "list bullet points by unit",
		"SELECT "+bulletColumns+" FROM bullet_points WHERE unit_id IN ("+schema.Placeholders(len(args))+") ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, "list bullet points by unit", scanBulletPoint)
}

func (r *bulletPointRepository) SetValidity(ctx context.Context, id valueobjects.BulletPointID, status valueobjects.ValidityStatus) error {
	res, err := r.exec(ctx, "update validity",
		"UPDATE bullet_points SET validity_status = ? WHERE id = ?", status.String(), int64(id))
	if err != nil {
		return err
	}
	n, err := rowsAffected(res, "update validity")
	if err != nil {
		return err
	}
	if n == 0 {
		return pkgerrors.NewNotFoundError("bullet point", int64(id))
	}
	return nil
}

func (r *bulletPointRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.exec(ctx, "delete bullet points", "DELETE FROM bullet_points")
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, "delete bullet points")
}

func scanBulletPoint(s rowScanner) (*entities.BulletPoint, error) {
	var (
		id, unitID                 int64
		echelon, content, validity string
		createdAt                  string
	)
	if err := s.Scan(&id, &unitID, &echelon, &content, &validity, &createdAt); err != nil {
		return nil, err
	}
	status, err := valueobjects.ParseValidityStatus(validity)
	if err != nil {
		return nil, err
	}
	ts, err := utils.ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructBulletPoint(
		valueobjects.BulletPointID(id), valueobjects.UnitID(unitID), valueobjects.EchelonLevel(echelon),
		valueobjects.ContentFromStore(content), status, ts,
	), nil
}
