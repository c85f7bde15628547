package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("provenance")

	c.RecordHTTPRequest(http.MethodGet, "/api/v2/hierarchy", 200, 5*time.Millisecond)
	c.RecordBusRequest("command", "RegenerateSummariesCommand", nil, time.Millisecond)
	c.RecordBusRequest("command", "RegenerateSummariesCommand", errors.New("x"), time.Millisecond)
	c.RecordRegeneration(12, nil, time.Second)
	c.RecordInvalidation(3)
	c.RecordEventPublish(2, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/v2/hierarchy", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BusRequests.WithLabelValues("command", "RegenerateSummariesCommand", "error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.RegeneratedBullets))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.InvalidatedBullets))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.EventsPublished.WithLabelValues("success")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordHTTPRequest("GET", "/", 200, 0)
		c.RecordRegeneration(1, nil, 0)
		c.RecordInvalidation(1)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("provenance")
	c.RecordInvalidation(1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "provenance_invalidated_bullet_points_total 1")
}
