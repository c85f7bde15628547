package handlers

import (
	"context"
	"fmt"

	"provenance-backend/application/queries"
	"provenance-backend/application/queries/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
)

// UnitQueryHandler answers unit, raw fact and CCIR queries
type UnitQueryHandler struct {
	catalog *services.CatalogService
}

// NewUnitQueryHandler creates a new handler instance
func NewUnitQueryHandler(catalog *services.CatalogService) *UnitQueryHandler {
	return &UnitQueryHandler{catalog: catalog}
}

// Handle executes the query
func (h *UnitQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.ListUnitsQuery:
		units, err := h.catalog.ListUnits(ctx)
		if err != nil {
			return nil, err
		}
		return queries.NewUnitViews(units), nil

	case queries.GetUnitSubtreeQuery:
		node, err := h.catalog.UnitSubtree(ctx, valueobjects.UnitID(q.UnitID))
		if err != nil {
			return nil, err
		}
		return queries.NewUnitTreeView(node), nil

	case queries.ListRawFactsQuery:
		facts, err := h.catalog.ListRawFacts(ctx, valueobjects.UnitID(q.UnitID))
		if err != nil {
			return nil, err
		}
		return queries.NewRawFactViews(facts), nil

	case queries.ListCCIRsQuery:
		ccirs, err := h.catalog.ListCCIRs(ctx, valueobjects.UnitID(q.UnitID), q.ActiveOnly)
		if err != nil {
			return nil, err
		}
		return queries.NewCCIRViews(ccirs), nil
	}
	return nil, fmt.Errorf("invalid query type %T", query)
}

// BulletPointQueryHandler answers bullet point and hierarchy queries
type BulletPointQueryHandler struct {
	provenance *services.ProvenanceService
	forest     *services.ForestService
}

// NewBulletPointQueryHandler creates a new handler instance
func NewBulletPointQueryHandler(provenance *services.ProvenanceService, forest *services.ForestService) *BulletPointQueryHandler {
	return &BulletPointQueryHandler{provenance: provenance, forest: forest}
}

// Handle executes the query
func (h *BulletPointQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetBulletPointQuery:
		details, err := h.provenance.Details(ctx, valueobjects.BulletPointID(q.BulletPointID))
		if err != nil {
			return nil, err
		}
		return queries.NewBulletPointDetailsView(details), nil

	case queries.ListBulletPointsQuery:
		bullets, err := h.forest.ListBulletPoints(ctx, valueobjects.UnitID(q.UnitID), q.IncludeSubunits)
		if err != nil {
			return nil, err
		}
		return queries.NewBulletPointViews(bullets), nil

	case queries.GetHierarchyQuery:
		if q.UnitID == nil {
			forest, err := h.forest.FullHierarchy(ctx)
			if err != nil {
				return nil, err
			}
			return queries.NewHierarchyView(forest), nil
		}
		forest, err := h.forest.UnitHierarchy(ctx, valueobjects.UnitID(*q.UnitID), q.IncludeSubunits)
		if err != nil {
			return nil, err
		}
		return queries.NewHierarchyView(forest), nil
	}
	return nil, fmt.Errorf("invalid query type %T", query)
}

// RegisterHandlers registers every query handler on b.
func RegisterHandlers(b *bus.QueryBus, catalog *services.CatalogService, provenance *services.ProvenanceService, forest *services.ForestService) error {
	units := NewUnitQueryHandler(catalog)
	bullets := NewBulletPointQueryHandler(provenance, forest)

	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.ListUnitsQuery{}, units},
		{queries.GetUnitSubtreeQuery{}, units},
		{queries.ListRawFactsQuery{}, units},
		{queries.ListCCIRsQuery{}, units},
		{queries.GetBulletPointQuery{}, bullets},
		{queries.ListBulletPointsQuery{}, bullets},
		{queries.GetHierarchyQuery{}, bullets},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
