package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "provenance-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPaginationParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    PaginationParams
		enabled bool
		wantErr bool
	}{
		{name: "absent", query: "", enabled: false},
		{name: "page only", query: "page=3", want: PaginationParams{Page: 3, PageSize: DefaultPageSize}, enabled: true},
		{name: "size capped", query: "page_size=10000", want: PaginationParams{Page: 1, PageSize: MaxPageSize}, enabled: true},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "garbage size", query: "page_size=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/units?"+tt.query, nil)
			got, enabled, err := ExtractPaginationParams(r)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, enabled)
			if tt.enabled {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Paginate(items, PaginationParams{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, &PaginationInfo{Page: 2, PageSize: 2, Total: 5, TotalPages: 3, HasNext: true, HasPrev: true}, meta)

	page, meta = Paginate(items, PaginationParams{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, page)
	assert.False(t, meta.HasNext)

	page, _ = Paginate(items, PaginationParams{Page: 9, PageSize: 2})
	assert.Empty(t, page)
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":7}}`, rec.Body.String())
}

func TestParseJSONBody(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid", payload: `{"name":"1st Brigade"}`},
		{name: "empty", payload: ``, wantErr: true},
		{name: "unknown field", payload: `{"team_name":"x"}`, wantErr: true},
		{name: "malformed", payload: `{"name":`, wantErr: true},
		{name: "too large", payload: `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(tt.payload))
			var got body
			err := ParseJSONBody(httptest.NewRecorder(), r, &got)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1st Brigade", got.Name)
		})
	}
}

func TestActor(t *testing.T) {
	assert.Equal(t, "anonymous", Actor(context.Background()))

	ctx := WithUserID(context.Background(), "analyst-1")
	ctx = WithUserRoles(ctx, []string{"analyst"})
	assert.Equal(t, "analyst-1", Actor(ctx))
	assert.True(t, HasRole(ctx, "analyst"))
	assert.False(t, HasRole(ctx, "admin"))
}

func TestNewMeta(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-1")

	meta := NewMeta(r, "v2")
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"request_id":"req-1"`)
	assert.Contains(t, string(raw), `"version":"v2"`)
}
