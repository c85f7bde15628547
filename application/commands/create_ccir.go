package commands

import (
	"context"
	"fmt"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/utils"
)

// CreateCCIRCommand registers a commander's critical information requirement.
// Active defaults to true when omitted.
type CreateCCIRCommand struct {
	UnitID      int64    `json:"unit_id" validate:"required,gt=0"`
	Description string   `json:"description" validate:"required,max=2000"`
	Keywords    []string `json:"keywords" validate:"required,min=1,max=20,dive,required,max=100"`
	Active      *bool    `json:"active,omitempty"`
}

// Validate validates the command
func (c CreateCCIRCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateCCIRHandler handles CreateCCIRCommand and returns the stored *entities.CCIR
type CreateCCIRHandler struct {
	catalog *services.CatalogService
}

// NewCreateCCIRHandler creates a new handler instance
func NewCreateCCIRHandler(catalog *services.CatalogService) *CreateCCIRHandler {
	return &CreateCCIRHandler{catalog: catalog}
}

// Handle executes the command
func (h *CreateCCIRHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(CreateCCIRCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}

	active := true
	if c.Active != nil {
		active = *c.Active
	}
	return h.catalog.CreateCCIR(ctx, valueobjects.UnitID(c.UnitID), c.Description, c.Keywords, active)
}
