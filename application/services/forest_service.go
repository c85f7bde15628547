package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"provenance-backend/application/ports"
	"provenance-backend/domain/core/aggregates"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/observability"
)

// ForestService reads bullet points and edges from one snapshot and
// assembles provenance trees.
type ForestService struct {
	uow    ports.UnitOfWork
	tracer *observability.Tracer
}

func NewForestService(uow ports.UnitOfWork) *ForestService {
	return &ForestService{uow: uow, tracer: observability.NewTracer("provenance-backend/forest")}
}

// FullHierarchy returns the forest over every bullet point.
func (s *ForestService) FullHierarchy(ctx context.Context) ([]aggregates.ForestNode, error) {
	ctx, span := s.tracer.Start(ctx, "ForestService.FullHierarchy")
	defer span.End()

	var forest []aggregates.ForestNode
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		bullets, err := repos.BulletPoints().List(ctx)
		if err != nil {
			return err
		}
		edges, err := repos.Provenance().ListDerivations(ctx)
		if err != nil {
			return err
		}
		forest, err = aggregates.BuildForest(bullets, edges)
		return err
	})
	observability.RecordError(span, err)
	return forest, err
}

// UnitHierarchy returns the forest over the bullet points owned by unitID,
// or by its whole descendant closure when includeSubunits is set. Edges
// leaving that selection are dropped.
func (s *ForestService) UnitHierarchy(ctx context.Context, unitID valueobjects.UnitID, includeSubunits bool) ([]aggregates.ForestNode, error) {
	ctx, span := s.tracer.Start(ctx, "ForestService.UnitHierarchy",
		attribute.Int64("unit_id", int64(unitID)),
		attribute.Bool("include_subunits", includeSubunits),
	)
	defer span.End()

	var forest []aggregates.ForestNode
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		bullets, err := bulletsInScope(ctx, repos, unitID, includeSubunits)
		if err != nil {
			return err
		}
		edges, err := repos.Provenance().ListDerivations(ctx)
		if err != nil {
			return err
		}
		forest, err = aggregates.BuildForest(bullets, edges)
		return err
	})
	observability.RecordError(span, err)
	return forest, err
}

// bulletsInScope loads the bullet points of unitID, optionally with its
// descendants. Unknown units fail with not found.
func bulletsInScope(ctx context.Context, repos ports.Repositories, unitID valueobjects.UnitID, includeSubunits bool) ([]*entities.BulletPoint, error) {
	scope := []valueobjects.UnitID{unitID}
	if includeSubunits {
		units, err := repos.Units().List(ctx)
		if err != nil {
			return nil, err
		}
		scope, err = aggregates.NewUnitTree(units).Descendants(unitID)
		if err != nil {
			return nil, err
		}
	} else if _, err := repos.Units().GetByID(ctx, unitID); err != nil {
		return nil, err
	}
	return repos.BulletPoints().ListByUnits(ctx, scope)
}

// ListBulletPoints returns the flat bullet point list for a unit scope, ordered by id.
func (s *ForestService) ListBulletPoints(ctx context.Context, unitID valueobjects.UnitID, includeSubunits bool) ([]*entities.BulletPoint, error) {
	var bullets []*entities.BulletPoint
	err := s.uow.View(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		bullets, err = bulletsInScope(ctx, repos, unitID, includeSubunits)
		return err
	})
	return bullets, err
}
