package commands

import (
	"context"
	"fmt"

	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/valueobjects"
	pkgerrors "provenance-backend/pkg/errors"
	"provenance-backend/pkg/utils"
)

// RegenerateSummariesCommand rebuilds every bullet point from raw facts.
// Keyword filters by a single term; CCIRID filters by the keywords of a
// stored CCIR. At most one of them may be set. Neither means no filter.
type RegenerateSummariesCommand struct {
	Keyword string `json:"ccir,omitempty" validate:"omitempty,max=100"`
	CCIRID  *int64 `json:"ccir_id,omitempty" validate:"omitempty,gt=0"`
}

// Validate validates the command
func (c RegenerateSummariesCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.CCIRID != nil && c.Keyword != "" {
		return pkgerrors.NewValidationError("ccir and ccir_id are mutually exclusive")
	}
	return nil
}

// RegenerateSummariesHandler handles RegenerateSummariesCommand and returns
// a *services.RegenerationResult
type RegenerateSummariesHandler struct {
	regeneration *services.RegenerationService
}

// NewRegenerateSummariesHandler creates a new handler instance
func NewRegenerateSummariesHandler(regeneration *services.RegenerationService) *RegenerateSummariesHandler {
	return &RegenerateSummariesHandler{regeneration: regeneration}
}

// Handle executes the command
func (h *RegenerateSummariesHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(RegenerateSummariesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid command type %T", cmd)
	}

	if c.CCIRID != nil {
		return h.regeneration.RegenerateForCCIR(ctx, valueobjects.CCIRID(*c.CCIRID))
	}
	return h.regeneration.RegenerateAll(ctx, valueobjects.NewKeywordFilter(c.Keyword))
}
