// Package v1 serves the original unversioned routes (/teams, /ccirs,
// /raw-data, /bullet-points/...) on top of the v2 command and query buses, using the
// original field names so existing clients keep working.
package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/queries"
	querybus "provenance-backend/application/queries/bus"
	"provenance-backend/domain/core/entities"
	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Prefixes lists the top level paths served by this router
var Prefixes = []string{"/teams", "/ccirs", "/raw-data", "/summaries", "/hierarchy", "/bullet-points"}

// Config carries the middleware shared with the v2 API
type Config struct {
	Authenticate    func(http.Handler) http.Handler
	RegenerateGuard func(http.Handler) http.Handler
}

type handler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRouter creates the legacy router
func NewRouter(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, cfg Config, logger *zap.Logger) *mux.Router {
	h := &handler{commandBus: commandBus, queryBus: queryBus, logger: logger}
	router := mux.NewRouter()

	if cfg.Authenticate != nil {
		router.Use(cfg.Authenticate)
	}
	router.Use(versionHeaders)

	regenerate := http.Handler(http.HandlerFunc(h.regenerateSummaries))
	if cfg.RegenerateGuard != nil {
		regenerate = cfg.RegenerateGuard(regenerate)
	}

	router.HandleFunc("/teams", h.createTeam).Methods(http.MethodPost)
	router.HandleFunc("/teams", h.listTeams).Methods(http.MethodGet)
	router.HandleFunc("/teams/{team_id}/subtree", h.teamSubtree).Methods(http.MethodGet)
	router.HandleFunc("/ccirs", h.createCCIR).Methods(http.MethodPost)
	router.HandleFunc("/ccirs/{team_id}", h.listCCIRs).Methods(http.MethodGet)
	router.HandleFunc("/raw-data", h.createRawData).Methods(http.MethodPost)
	router.HandleFunc("/raw-data/{team_id}", h.listRawData).Methods(http.MethodGet)
	router.Handle("/summaries/regenerate", regenerate).Methods(http.MethodPost)
	router.HandleFunc("/hierarchy", h.hierarchy).Methods(http.MethodGet)
	router.HandleFunc("/bullet-points", h.createBulletPoint).Methods(http.MethodPost)
	router.HandleFunc("/bullet-points/link", h.linkBulletPoints).Methods(http.MethodPost)
	router.HandleFunc("/bullet-points/team/{team_id}", h.teamBulletPoints).Methods(http.MethodGet)
	router.HandleFunc("/bullet-points/team/{team_id}/hierarchy", h.teamHierarchy).Methods(http.MethodGet)
	router.HandleFunc("/bullet-points/{bp_id}", h.bulletPointDetails).Methods(http.MethodGet)
	router.HandleFunc("/bullet-points/invalidate/{bp_id}", h.invalidateBulletPoint).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.RespondRaw(w, http.StatusNotFound, detail{Detail: "Not Found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.RespondRaw(w, http.StatusMethodNotAllowed, detail{Detail: "Method Not Allowed"})
	})
	return router
}

type teamRequest struct {
	TeamName     string `json:"team_name"`
	EchelonLevel string `json:"echelon_level"`
	ParentTeamID *int64 `json:"parent_team_id"`
}

type team struct {
	TeamID       int64  `json:"team_id"`
	TeamName     string `json:"team_name"`
	EchelonLevel string `json:"echelon_level"`
	ParentTeamID *int64 `json:"parent_team_id"`
}

type teamNode struct {
	team
	Children []teamNode `json:"children"`
}

type ccirRequest struct {
	TeamID      int64    `json:"team_id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Active      *bool    `json:"active"`
}

type ccir struct {
	CCIRID      int64    `json:"ccir_id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Active      bool     `json:"active"`
}

type rawDataRequest struct {
	TeamID     int64  `json:"team_id"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}

type rawData struct {
	RawDataID  int64  `json:"raw_data_id"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
	CreatedAt  string `json:"created_at"`
}

type bulletPointRequest struct {
	TeamID       int64   `json:"team_id"`
	EchelonLevel string  `json:"echelon_level"`
	Content      string  `json:"content"`
	ChildBPs     []int64 `json:"child_bps"`
	ChildRaws    []int64 `json:"child_raws"`
}

type linkRequest struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

type bulletPoint struct {
	BPID           int64  `json:"bp_id"`
	TeamID         int64  `json:"team_id"`
	EchelonLevel   string `json:"echelon_level"`
	Content        string `json:"content"`
	ValidityStatus string `json:"validity_status"`
	CreatedAt      string `json:"created_at"`
}

type bulletNode struct {
	BPID           int64        `json:"bp_id"`
	TeamID         int64        `json:"team_id"`
	Content        string       `json:"content"`
	ValidityStatus string       `json:"validity_status"`
	Children       []bulletNode `json:"children"`
}

type bulletDetails struct {
	BPID              int64   `json:"bp_id"`
	TeamID            int64   `json:"team_id"`
	Content           string  `json:"content"`
	ValidityStatus    string  `json:"validity_status"`
	CreatedAt         string  `json:"created_at"`
	ChildBulletPoints []int64 `json:"child_bullet_points"`
	ChildRawData      []int64 `json:"child_raw_data"`
}

type detail struct {
	Detail string `json:"detail"`
}

func (h *handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.ParentTeamID != nil && *req.ParentTeamID == 0 {
		req.ParentTeamID = nil
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateUnitCommand{
		Name:         req.TeamName,
		EchelonLevel: req.EchelonLevel,
		ParentID:     req.ParentTeamID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	unit := result.(*entities.Unit)
	common.RespondRaw(w, http.StatusOK, map[string]interface{}{
		"team_id": int64(unit.ID()),
		"message": "Team created",
	})
}

func (h *handler) listTeams(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListUnitsQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	units := result.([]queries.UnitView)
	teams := make([]team, 0, len(units))
	for _, u := range units {
		teams = append(teams, team{
			TeamID:       u.ID,
			TeamName:     u.Name,
			EchelonLevel: u.EchelonLevel,
			ParentTeamID: u.ParentID,
		})
	}
	common.RespondRaw(w, http.StatusOK, teams)
}

func (h *handler) teamSubtree(w http.ResponseWriter, r *http.Request) {
	teamID, err := muxID(r, "team_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUnitSubtreeQuery{UnitID: teamID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondRaw(w, http.StatusOK, newTeamNode(result.(queries.UnitTreeView)))
}

func (h *handler) createCCIR(w http.ResponseWriter, r *http.Request) {
	var req ccirRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateCCIRCommand{
		UnitID:      req.TeamID,
		Description: req.Description,
		Keywords:    req.Keywords,
		Active:      req.Active,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created := result.(*entities.CCIR)
	common.RespondRaw(w, http.StatusOK, map[string]interface{}{
		"ccir_id": int64(created.ID()),
		"message": "CCIR created",
	})
}

func (h *handler) listCCIRs(w http.ResponseWriter, r *http.Request) {
	teamID, err := muxID(r, "team_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListCCIRsQuery{UnitID: teamID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := result.([]queries.CCIRView)
	out := make([]ccir, 0, len(views))
	for _, c := range views {
		out = append(out, ccir{
			CCIRID:      c.ID,
			Description: c.Description,
			Keywords:    c.Keywords,
			Active:      c.Active,
		})
	}
	common.RespondRaw(w, http.StatusOK, out)
}

func (h *handler) createRawData(w http.ResponseWriter, r *http.Request) {
	var req rawDataRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateRawFactCommand{
		UnitID:     req.TeamID,
		Content:    req.Content,
		SourceType: req.SourceType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	fact := result.(*entities.RawFact)
	common.RespondRaw(w, http.StatusOK, map[string]interface{}{
		"raw_data_id": int64(fact.ID()),
		"message":     "Raw data created. Run /summaries/regenerate to update bullet points.",
	})
}

func (h *handler) listRawData(w http.ResponseWriter, r *http.Request) {
	teamID, err := muxID(r, "team_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListRawFactsQuery{UnitID: teamID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	facts := result.([]queries.RawFactView)
	out := make([]rawData, 0, len(facts))
	for _, f := range facts {
		out = append(out, rawData{
			RawDataID:  f.ID,
			Content:    f.Content,
			SourceType: f.SourceType,
			CreatedAt:  f.CreatedAt,
		})
	}
	common.RespondRaw(w, http.StatusOK, out)
}

func (h *handler) regenerateSummaries(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("ccir")
	if _, err := h.commandBus.Send(r.Context(), commands.RegenerateSummariesCommand{Keyword: keyword}); err != nil {
		h.fail(w, r, err)
		return
	}

	var filter *string
	if keyword != "" {
		filter = &keyword
	}
	common.RespondRaw(w, http.StatusOK, map[string]interface{}{
		"message":     "All summaries regenerated",
		"ccir_filter": filter,
	})
}

func (h *handler) hierarchy(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondRaw(w, http.StatusOK, bulletNodes(result.([]queries.HierarchyNodeView)))
}

func (h *handler) createBulletPoint(w http.ResponseWriter, r *http.Request) {
	var req bulletPointRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateBulletPointCommand{
		UnitID:         req.TeamID,
		EchelonLevel:   req.EchelonLevel,
		Content:        req.Content,
		ChildBulletIDs: req.ChildBPs,
		RawFactIDs:     req.ChildRaws,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bullet := result.(*entities.BulletPoint)
	common.RespondRaw(w, http.StatusOK, map[string]interface{}{
		"bp_id":   int64(bullet.ID()),
		"message": "Bullet point created",
	})
}

func (h *handler) linkBulletPoints(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.commandBus.Send(r.Context(), commands.LinkBulletPointsCommand{
		ParentID: req.ParentID,
		ChildID:  req.ChildID,
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondRaw(w, http.StatusOK, map[string]string{
		"msg": fmt.Sprintf("Linked bullet point %d as a child of %d", req.ChildID, req.ParentID),
	})
}

func (h *handler) teamBulletPoints(w http.ResponseWriter, r *http.Request) {
	teamID, err := muxID(r, "team_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	includeSubteams, err := flag(r, "include_subteams", false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListBulletPointsQuery{UnitID: teamID, IncludeSubunits: includeSubteams})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := result.([]queries.BulletPointView)
	out := make([]bulletPoint, 0, len(views))
	for _, b := range views {
		out = append(out, bulletPoint{
			BPID:           b.ID,
			TeamID:         b.UnitID,
			EchelonLevel:   b.EchelonLevel,
			Content:        b.Content,
			ValidityStatus: b.ValidityStatus,
			CreatedAt:      b.CreatedAt,
		})
	}
	common.RespondRaw(w, http.StatusOK, out)
}

func (h *handler) teamHierarchy(w http.ResponseWriter, r *http.Request) {
	teamID, err := muxID(r, "team_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	includeSubteams, err := flag(r, "include_subteams", true)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{UnitID: &teamID, IncludeSubunits: includeSubteams})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondRaw(w, http.StatusOK, bulletNodes(result.([]queries.HierarchyNodeView)))
}

func (h *handler) bulletPointDetails(w http.ResponseWriter, r *http.Request) {
	bpID, err := muxID(r, "bp_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetBulletPointQuery{BulletPointID: bpID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	d := result.(queries.BulletPointDetailsView)
	common.RespondRaw(w, http.StatusOK, bulletDetails{
		BPID:              d.ID,
		TeamID:            d.UnitID,
		Content:           d.Content,
		ValidityStatus:    d.ValidityStatus,
		CreatedAt:         d.CreatedAt,
		ChildBulletPoints: d.ChildBulletIDs,
		ChildRawData:      d.RawFactIDs,
	})
}

func (h *handler) invalidateBulletPoint(w http.ResponseWriter, r *http.Request) {
	bpID, err := muxID(r, "bp_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.commandBus.Send(r.Context(), commands.InvalidateBulletPointCommand{BulletPointID: bpID}); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondRaw(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Bullet point %d invalidated (and parents as well).", bpID),
	})
}

// fail writes err in the {"detail": ...} shape legacy clients expect
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		if appErr.HTTPStatus != 0 {
			status = appErr.HTTPStatus
		}
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Legacy request failed", zap.Error(err), zap.String("path", r.URL.Path))
	} else {
		h.logger.Debug("Legacy request rejected", zap.Error(err), zap.String("path", r.URL.Path))
	}
	common.RespondRaw(w, status, detail{Detail: message})
}

func muxID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

func flag(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("%s must be true or false", name))
	}
	return v, nil
}

func newTeamNode(v queries.UnitTreeView) teamNode {
	n := teamNode{
		team: team{
			TeamID:       v.ID,
			TeamName:     v.Name,
			EchelonLevel: v.EchelonLevel,
			ParentTeamID: v.ParentID,
		},
		Children: make([]teamNode, 0, len(v.Children)),
	}
	for _, c := range v.Children {
		n.Children = append(n.Children, newTeamNode(c))
	}
	return n
}

func bulletNodes(views []queries.HierarchyNodeView) []bulletNode {
	out := make([]bulletNode, 0, len(views))
	for _, v := range views {
		out = append(out, bulletNode{
			BPID:           v.ID,
			TeamID:         v.UnitID,
			Content:        v.Content,
			ValidityStatus: v.ValidityStatus,
			Children:       bulletNodes(v.Children),
		})
	}
	return out
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}
