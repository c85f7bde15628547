package commands

import (
	"context"
	"fmt"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/utils"
)

// CreateBulletPointCommand writes a bullet point by hand together with the
// bullet points and raw facts it was derived from
type CreateBulletPointCommand struct {
	UnitID         int64   `json:"unit_id" validate:"required,gt=0"`
	EchelonLevel   string  `json:"echelon_level,omitempty" validate:"omitempty,max=50"`
	Content        string  `json:"content" validate:"required,max=10000"`
	ChildBulletIDs []int64 `json:"child_bullet_ids,omitempty" validate:"max=500,dive,gt=0"`
	RawFactIDs     []int64 `json:"raw_fact_ids,omitempty" validate:"max=500,dive,gt=0"`
}

// Validate validates the command
func (c CreateBulletPointCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateBulletPointHandler handles CreateBulletPointCommand and returns the
// stored *entities.BulletPoint
type CreateBulletPointHandler struct {
	provenance *services.ProvenanceService
}

// NewCreateBulletPointHandler creates a new handler instance
func NewCreateBulletPointHandler(provenance *services.ProvenanceService) *CreateBulletPointHandler {
	return &CreateBulletPointHandler{provenance: provenance}
}

// Handle executes the command
func (h *CreateBulletPointHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(CreateBulletPointCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}

	content, err := valueobjects.NewContent(c.Content)
	if err != nil {
		return nil, err
	}
	var echelon valueobjects.EchelonLevel
	if c.EchelonLevel != "" {
		if echelon, err = valueobjects.NewEchelonLevel(c.EchelonLevel); err != nil {
			return nil, err
		}
	}

	input := services.AuthorBulletInput{
		UnitID:       valueobjects.UnitID(c.UnitID),
		Content:      content,
		EchelonLevel: echelon,
	}
	for _, id := range c.ChildBulletIDs {
		input.ChildBullets = append(input.ChildBullets, valueobjects.BulletPointID(id))
	}
	for _, id := range c.RawFactIDs {
		input.RawFacts = append(input.RawFacts, valueobjects.RawFactID(id))
	}
	return h.provenance.CreateBulletPoint(ctx, input)
}

// LinkBulletPointsCommand records that the parent bullet point was derived
// from the child
type LinkBulletPointsCommand struct {
	ParentID int64 `json:"parent_id" validate:"required,gt=0"`
	ChildID  int64 `json:"child_id" validate:"required,gt=0"`
}

// Validate validates the command
func (c LinkBulletPointsCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// LinkBulletPointsHandler handles LinkBulletPointsCommand. It returns no result.
type LinkBulletPointsHandler struct {
	provenance *services.ProvenanceService
}

// NewLinkBulletPointsHandler creates a new handler instance
func NewLinkBulletPointsHandler(provenance *services.ProvenanceService) *LinkBulletPointsHandler {
	return &LinkBulletPointsHandler{provenance: provenance}
}

// Handle executes the command
func (h *LinkBulletPointsHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(LinkBulletPointsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}
	err := h.provenance.LinkBulletPoints(ctx, valueobjects.BulletPointID(c.ParentID), valueobjects.BulletPointID(c.ChildID))
	return nil, err
}

// InvalidateBulletPointCommand marks a bullet point and everything derived
// from it as invalid
type InvalidateBulletPointCommand struct {
	BulletPointID int64 `json:"bullet_point_id" validate:"required,gt=0"`
}

// Validate validates the command
func (c InvalidateBulletPointCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// InvalidateBulletPointHandler handles InvalidateBulletPointCommand and
// returns the invalidated ids as []valueobjects.BulletPointID
type InvalidateBulletPointHandler struct {
	invalidation *services.InvalidationService
}

// NewInvalidateBulletPointHandler creates a new handler instance
func NewInvalidateBulletPointHandler(invalidation *services.InvalidationService) *InvalidateBulletPointHandler {
	return &InvalidateBulletPointHandler{invalidation: invalidation}
}

// Handle executes the command
func (h *InvalidateBulletPointHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(InvalidateBulletPointCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}
	return h.invalidation.Invalidate(ctx, valueobjects.BulletPointID(c.BulletPointID))
}
