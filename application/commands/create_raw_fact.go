package commands

import (
	"context"
	"fmt"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/utils"
)

// CreateRawFactCommand records a raw observation for a unit
type CreateRawFactCommand struct {
	UnitID     int64  `json:"unit_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,max=10000"`
	SourceType string `json:"source_type,omitempty" validate:"omitempty,max=50"`
}

// Validate validates the command
func (c CreateRawFactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CreateRawFactHandler handles CreateRawFactCommand and returns the stored *entities.RawFact
type CreateRawFactHandler struct {
	catalog *services.CatalogService
}

// NewCreateRawFactHandler creates a new handler instance
func NewCreateRawFactHandler(catalog *services.CatalogService) *CreateRawFactHandler {
	return &CreateRawFactHandler{catalog: catalog}
}

// Handle executes the command
func (h *CreateRawFactHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(CreateRawFactCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}
	return h.catalog.CreateRawFact(ctx, valueobjects.UnitID(c.UnitID), c.Content, c.SourceType)
}
