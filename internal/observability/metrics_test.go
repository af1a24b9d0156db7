package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("GET /api/summary", 200)
	m.ObserveRequest("GET /api/summary", 200)
	m.ObserveRequest("GET /api/evaluations/{id}", 404)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/summary", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/evaluations/{id}", "404")))
}

func TestMetrics_ObserveComparison(t *testing.T) {
	m := NewMetrics()
	m.ObserveComparison("cross_run", "b", 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.comparisons.WithLabelValues("cross_run", "b")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.comparisonDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("x", 200)
		m.ObserveComparison("same_run", "tie", time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveComparison("same_run", "a", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `arena_comparisons_total{mode="same_run",verdict="a"} 1`)
	assert.Contains(t, string(body), "arena_comparison_duration_seconds_bucket")
	assert.Contains(t, string(body), "go_goroutines")
}
