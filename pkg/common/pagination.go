package common

import (
	"net/http"
	"strconv"

	apperrors "provenance-backend/pkg/errors"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// PaginationInfo contains pagination details
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ExtractPaginationParams reads page and page_size from the query string.
// The second result is false when the caller asked for no pagination.
func ExtractPaginationParams(r *http.Request) (PaginationParams, bool, error) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("page_size") == "" {
		return PaginationParams{}, false, nil
	}

	params := PaginationParams{Page: 1, PageSize: DefaultPageSize}
	if page := q.Get("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 {
			return params, false, apperrors.NewValidationError("page must be a positive integer")
		}
		params.Page = p
	}
	if pageSize := q.Get("page_size"); pageSize != "" {
		ps, err := strconv.Atoi(pageSize)
		if err != nil || ps < 1 {
			return params, false, apperrors.NewValidationError("page_size must be a positive integer")
		}
		if ps > MaxPageSize {
			ps = MaxPageSize
		}
		params.PageSize = ps
	}
	return params, true, nil
}

// Offset returns the index of the first item on the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculateTotalPages calculates total number of pages
func CalculateTotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// BuildPaginationMeta builds pagination metadata
func BuildPaginationMeta(page, pageSize, total int) *PaginationInfo {
	totalPages := CalculateTotalPages(total, pageSize)

	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginate slices items down to the requested page
func Paginate[T any](items []T, p PaginationParams) ([]T, *PaginationInfo) {
	meta := BuildPaginationMeta(p.Page, p.PageSize, len(items))
	start := p.Offset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
