package commands

import (
	"context"
	"fmt"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/utils"
)

// CreateUnitCommand creates a unit, optionally under a parent
type CreateUnitCommand struct {
	Name         string `json:"name" validate:"required,max=200"`
	EchelonLevel string `json:"echelon_level" validate:"required,max=50"`
	ParentID     *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// Validate validates the command
func (c CreateUnitCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateUnitHandler handles CreateUnitCommand and returns the stored *entities.Unit
type CreateUnitHandler struct {
	catalog *services.CatalogService
}

// NewCreateUnitHandler creates a new handler instance
func NewCreateUnitHandler(catalog *services.CatalogService) *CreateUnitHandler {
	return &CreateUnitHandler{catalog: catalog}
}

// Handle executes the command
func (h *CreateUnitHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(CreateUnitCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}

	var parent *valueobjects.UnitID
	if c.ParentID != nil {
		id := valueobjects.UnitID(*c.ParentID)
		parent = &id
	}
	return h.catalog.CreateUnit(ctx, c.Name, c.EchelonLevel, parent)
}
