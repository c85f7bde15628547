package handlers

import (
	"net/http"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/queries"
	querybus "provenance-backend/application/queries/bus"
	"provenance-backend/domain/core/entities"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"

	"go.uber.org/zap"
)

// UnitHandler serves units and the data attached to them: raw facts and CCIRs
type UnitHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *UnitHandler {
	return &UnitHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateUnitRequest represents the request body for creating a unit
type CreateUnitRequest struct {
	Name         string `json:"name"`
	EchelonLevel string `json:"echelon_level"`
	ParentID     *int64 `json:"parent_id,omitempty"`
}

// CreateRawFactRequest represents the request body for recording a raw fact
type CreateRawFactRequest struct {
	UnitID     int64  `json:"unit_id"`
	Content    string `json:"content"`
	SourceType string `json:"source_type,omitempty"`
}

// CreateCCIRRequest represents the request body for creating a CCIR
type CreateCCIRRequest struct {
	UnitID      int64    `json:"unit_id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Active      *bool    `json:"active,omitempty"`
}

// CreateUnit handles POST /units
func (h *UnitHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateUnitCommand{
		Name:         req.Name,
		EchelonLevel: req.EchelonLevel,
		ParentID:     req.ParentID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	unit := result.(*entities.Unit)
	h.logger.Info("Unit created",
		zap.Int64("unit_id", int64(unit.ID())),
		zap.String("user", common.Actor(r.Context())),
	)
	common.RespondJSON(w, http.StatusCreated, queries.NewUnitView(unit))
}

// ListUnits handles GET /units
func (h *UnitHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListUnitsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondList(w, r, h.errors, result.([]queries.UnitView))
}

// GetSubtree handles GET /units/{unitID}/subtree
func (h *UnitHandler) GetSubtree(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r, "unitID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUnitSubtreeQuery{UnitID: unitID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// CreateRawFact handles POST /raw-facts
func (h *UnitHandler) CreateRawFact(w http.ResponseWriter, r *http.Request) {
	var req CreateRawFactRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateRawFactCommand{
		UnitID:     req.UnitID,
		Content:    req.Content,
		SourceType: req.SourceType,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, queries.NewRawFactView(result.(*entities.RawFact)))
}

// ListRawFacts handles GET /units/{unitID}/raw-facts
func (h *UnitHandler) ListRawFacts(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r, "unitID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListRawFactsQuery{UnitID: unitID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondList(w, r, h.errors, result.([]queries.RawFactView))
}

// CreateCCIR handles POST /ccirs
func (h *UnitHandler) CreateCCIR(w http.ResponseWriter, r *http.Request) {
	var req CreateCCIRRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateCCIRCommand{
		UnitID:      req.UnitID,
		Description: req.Description,
		Keywords:    req.Keywords,
		Active:      req.Active,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, queries.NewCCIRView(result.(*entities.CCIR)))
}

// ListCCIRs handles GET /units/{unitID}/ccirs
func (h *UnitHandler) ListCCIRs(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r, "unitID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	activeOnly, err := boolQuery(r, "active_only", false)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListCCIRsQuery{UnitID: unitID, ActiveOnly: activeOnly})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondList(w, r, h.errors, result.([]queries.CCIRView))
}
