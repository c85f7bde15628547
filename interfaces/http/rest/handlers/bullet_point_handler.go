package handlers

import (
	"net/http"
	"strconv"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/queries"
	querybus "provenance-backend/application/queries/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/core/entities"
	"provenance-backend/domain/core/valueobjects"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"

	"go.uber.org/zap"
)

// BulletPointHandler serves bullet points, their provenance and regeneration
type BulletPointHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewBulletPointHandler creates a new bullet point handler
func NewBulletPointHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *BulletPointHandler {
	return &BulletPointHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateBulletPointRequest represents the request body for authoring a bullet point
type CreateBulletPointRequest struct {
	UnitID         int64   `json:"unit_id"`
	EchelonLevel   string  `json:"echelon_level,omitempty"`
	Content        string  `json:"content"`
	ChildBulletIDs []int64 `json:"child_bullet_ids,omitempty"`
	RawFactIDs     []int64 `json:"raw_fact_ids,omitempty"`
}

// LinkBulletPointsRequest represents the request body for linking two bullet points
type LinkBulletPointsRequest struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// LinkResponse confirms a derivation link
type LinkResponse struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// InvalidateResponse lists every bullet point marked invalid
type InvalidateResponse struct {
	InvalidatedIDs []int64 `json:"invalidated_ids"`
}

// CreateBulletPoint handles POST /bullet-points
func (h *BulletPointHandler) CreateBulletPoint(w http.ResponseWriter, r *http.Request) {
	var req CreateBulletPointRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateBulletPointCommand{
		UnitID:         req.UnitID,
		EchelonLevel:   req.EchelonLevel,
		Content:        req.Content,
		ChildBulletIDs: req.ChildBulletIDs,
		RawFactIDs:     req.RawFactIDs,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, queries.NewBulletPointView(result.(*entities.BulletPoint)))
}

// GetBulletPoint handles GET /bullet-points/{bulletID}
func (h *BulletPointHandler) GetBulletPoint(w http.ResponseWriter, r *http.Request) {
	bulletID, err := pathID(r, "bulletID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetBulletPointQuery{BulletPointID: bulletID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// LinkBulletPoints handles POST /bullet-points/link
func (h *BulletPointHandler) LinkBulletPoints(w http.ResponseWriter, r *http.Request) {
	var req LinkBulletPointsRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if _, err := h.commandBus.Send(r.Context(), commands.LinkBulletPointsCommand{
		ParentID: req.ParentID,
		ChildID:  req.ChildID,
	}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, LinkResponse{ParentID: req.ParentID, ChildID: req.ChildID})
}

// InvalidateBulletPoint handles POST /bullet-points/{bulletID}/invalidate
func (h *BulletPointHandler) InvalidateBulletPoint(w http.ResponseWriter, r *http.Request) {
	bulletID, err := pathID(r, "bulletID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.InvalidateBulletPointCommand{BulletPointID: bulletID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	invalidated := result.([]valueobjects.BulletPointID)
	resp := InvalidateResponse{InvalidatedIDs: make([]int64, 0, len(invalidated))}
	for _, id := range invalidated {
		resp.InvalidatedIDs = append(resp.InvalidatedIDs, int64(id))
	}
	h.logger.Info("Bullet point invalidated",
		zap.Int64("bullet_point_id", bulletID),
		zap.Int("affected", len(resp.InvalidatedIDs)),
		zap.String("user", common.Actor(r.Context())),
	)
	common.RespondJSON(w, http.StatusOK, resp)
}

// ListUnitBulletPoints handles GET /units/{unitID}/bullet-points
func (h *BulletPointHandler) ListUnitBulletPoints(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r, "unitID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	includeSubunits, err := boolQuery(r, "include_subunits", false)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListBulletPointsQuery{UnitID: unitID, IncludeSubunits: includeSubunits})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondList(w, r, h.errors, result.([]queries.BulletPointView))
}

// GetHierarchy handles GET /hierarchy
func (h *BulletPointHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetUnitHierarchy handles GET /units/{unitID}/hierarchy
func (h *BulletPointHandler) GetUnitHierarchy(w http.ResponseWriter, r *http.Request) {
	unitID, err := pathID(r, "unitID")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	includeSubunits, err := boolQuery(r, "include_subunits", true)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{UnitID: &unitID, IncludeSubunits: includeSubunits})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// RegenerateSummaries handles POST /summaries/regenerate
func (h *BulletPointHandler) RegenerateSummaries(w http.ResponseWriter, r *http.Request) {
	cmd := commands.RegenerateSummariesCommand{Keyword: r.URL.Query().Get("ccir")}
	if raw := r.URL.Query().Get("ccir_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("ccir_id must be an integer").WithDetail("value", raw))
			return
		}
		cmd.CCIRID = &id
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, queries.NewRegenerationView(result.(*services.RegenerationResult)))
}
