package queries

import (
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

// ListUnitsQuery lists every unit ordered by id. Result: []UnitView
type ListUnitsQuery struct{}

// Validate validates the query
func (q ListUnitsQuery) Validate() error { return nil }

// GetUnitSubtreeQuery returns a unit with its descendants nested. Result: UnitTreeView
type GetUnitSubtreeQuery struct {
	UnitID int64 `json:"unit_id" validate:"required,gt=0"`
}

// Validate validates the query
func (q GetUnitSubtreeQuery) Validate() error { return utils.ValidateStruct(q) }

// ListRawFactsQuery lists a unit's own raw facts. Result: []RawFactView
type ListRawFactsQuery struct {
	UnitID int64 `json:"unit_id" validate:"required,gt=0"`
}

// Validate validates the query
func (q ListRawFactsQuery) Validate() error { return utils.ValidateStruct(q) }

// ListCCIRsQuery lists a unit's CCIRs. Result: []CCIRView
type ListCCIRsQuery struct {
	UnitID     int64 `json:"unit_id" validate:"required,gt=0"`
	ActiveOnly bool  `json:"active_only"`
}

// Validate validates the query
func (q ListCCIRsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetBulletPointQuery returns one bullet point with its provenance. Result: BulletPointDetailsView
type GetBulletPointQuery struct {
	BulletPointID int64 `json:"bullet_point_id" validate:"required,gt=0"`
}

// Validate validates the query
func (q GetBulletPointQuery) Validate() error { return utils.ValidateStruct(q) }

// ListBulletPointsQuery lists the bullet points of a unit, optionally with
// those of its subunits. Result: []BulletPointView
type ListBulletPointsQuery struct {
	UnitID          int64 `json:"unit_id" validate:"required,gt=0"`
	IncludeSubunits bool  `json:"include_subunits"`
}

// Validate validates the query
func (q ListBulletPointsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetHierarchyQuery builds the provenance forest, either over every bullet
// point or scoped to one unit. Result: []HierarchyNodeView
type GetHierarchyQuery struct {
	UnitID          *int64 `json:"unit_id,omitempty"`
	IncludeSubunits bool   `json:"include_subunits"`
}

// Validate validates the query
func (q GetHierarchyQuery) Validate() error {
	if q.UnitID != nil && *q.UnitID <= 0 {
		return pkgerrors.NewValidationError("unit_id must be greater than 0")
	}
	return nil
}
