package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"provenance-backend/pkg/common"
	pkgerrors "provenance-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
)

const apiVersion = "v2"

// pathID parses a positive integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name)).
			WithDetail("value", raw)
	}
	return id, nil
}

// boolQuery parses an optional boolean query parameter
func boolQuery(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("%s must be true or false", name)).
			WithDetail("value", raw)
	}
	return v, nil
}

// respondList writes items, paged when the request asks for it
func respondList[T any](w http.ResponseWriter, r *http.Request, errs *pkgerrors.ErrorHandler, items []T) {
	params, paged, err := common.ExtractPaginationParams(r)
	if err != nil {
		errs.Handle(w, r, err)
		return
	}

	meta := common.NewMeta(r, apiVersion)
	if paged {
		items, meta.Pagination = common.Paginate(items, params)
	}
	common.RespondWithMeta(w, http.StatusOK, items, meta)
}
