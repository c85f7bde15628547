package sqlstore

import (
	"context"

	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
)

type provenanceRepository struct {
	base
}

func (r *provenanceRepository) AddDerivation(ctx context.Context, edge entities.DerivationEdge) error {
	_, err := r.exec(ctx, "insert derivation edge",
		"INSERT INTO bullet_point_sources (parent_bullet_id, child_bullet_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		int64(edge.Parent), int64(edge.Child))
	return err
}

func (r *provenanceRepository) AddRawRef(ctx context.Context, ref entities.RawRef) error {
	_, err := r.exec(ctx, "insert raw ref",
		"INSERT INTO bullet_point_raw_refs (bullet_id, raw_fact_id, source_type) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		int64(ref.Bullet), int64(ref.RawFact), ref.SourceType)
	return err
}

func (r *provenanceRepository) ListDerivations(ctx context.Context) ([]entities.DerivationEdge, error) {
	rows, err := r.query(ctx, "list derivation edges",
		"SELECT parent_bullet_id, child_bullet_id FROM bullet_point_sources ORDER BY parent_bullet_id, child_bullet_id")
	if err != nil {
		return nil, err
	}
	return collect(rows, "list derivation edges", scanDerivation)
}

func (r *provenanceRepository) ListRawRefs(ctx context.Context) ([]entities.RawRef, error) {
	rows, err := r.query(ctx, "list raw refs",
		"SELECT bullet_id, raw_fact_id, source_type FROM bullet_point_raw_refs ORDER BY bullet_id, raw_fact_id")
	if err != nil {
		return nil, err
	}
	return collect(rows, "list raw refs", scanRawRef)
}

func (r *provenanceRepository) ChildrenOf(ctx context.Context, parent valueobjects.BulletPointID) ([]valueobjects.BulletPointID, error) {
	rows, err := r.query(ctx, "list children",
		"SELECT child_bullet_id FROM bullet_point_sources WHERE parent_bullet_id = ? ORDER BY child_bullet_id", int64(parent))
	if err != nil {
		return nil, err
	}
	return collect(rows, "list children", scanBulletID)
}

func (r *provenanceRepository) ParentsOf(ctx context.Context, child valueobjects.BulletPointID) ([]valueobjects.BulletPointID, error) {
	rows, err := r.query(ctx, "list parents",
		"SELECT parent_bullet_id FROM bullet_point_sources WHERE child_bullet_id = ? ORDER BY parent_bullet_id", int64(child))
	if err != nil {
		return nil, err
	}
	return collect(rows, "list parents", scanBulletID)
}

func (r *provenanceRepository) RawRefsOf(ctx context.Context, bullet valueobjects.BulletPointID) ([]entities.RawRef, error) {
	rows, err := r.query(ctx, "list raw refs of bullet",
		"SELECT bullet_id, raw_fact_id, source_type FROM bullet_point_raw_refs WHERE bullet_id = ? ORDER BY raw_fact_id", int64(bullet))
	if err != nil {
		return nil, err
	}
	return collect(rows, "list raw refs of bullet", scanRawRef)
}

func (r *provenanceRepository) DeleteAllRawRefs(ctx context.Context) (int64, error) {
	res, err := r.exec(ctx, "delete raw refs", "DELETE FROM bullet_point_raw_refs")
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, "delete raw refs")
}

func (r *provenanceRepository) DeleteAllDerivations(ctx context.Context) (int64, error) {
	res, err := r.exec(ctx, "delete derivation edges", "DELETE FROM bullet_point_sources")
	if err != nil {
		return 0, err
	}
	return rowsAffected(res, "delete derivation edges")
}

func scanDerivation(s rowScanner) (entities.DerivationEdge, error) {
	var parent, child int64
	if err := s.Scan(&parent, &child); err != nil {
		return entities.DerivationEdge{}, err
	}
	return entities.DerivationEdge{Parent: valueobjects.BulletPointID(parent), Child: valueobjects.BulletPointID(child)}, nil
}

func scanRawRef(s rowScanner) (entities.RawRef, error) {
	var bullet, raw int64
	var sourceType string
	if err := s.Scan(&bullet, &raw, &sourceType); err != nil {
		return entities.RawRef{}, err
	}
	return entities.RawRef{
		Bullet:     valueobjects.BulletPointID(bullet),
		RawFact:    valueobjects.RawFactID(raw),
		SourceType: sourceType,
	}, nil
}

func scanBulletID(s rowScanner) (valueobjects.BulletPointID, error) {
	var id int64
	err := s.Scan(&id)
	return valueobjects.BulletPointID(id), err
}
