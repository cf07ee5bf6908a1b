package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafidahmed/tinbari-backend/pkg/metrics"
)

func TestMetricsTracksRoutesByPatternAndOutcome(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := metrics.NewOperationMetrics(registry)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/sales/{saleId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	success := `
		# HELP shop_operation_success_total Successful shop operations.
		# TYPE shop_operation_success_total counter
		shop_operation_success_total{operation="GET /sales/{saleId}"} 1
	`
	require.NoError(t, testutil.GatherAndCompare(registry,
		strings.NewReader(success), "shop_operation_success_total"))

	failure := `
		# HELP shop_operation_failure_total Failed shop operations.
		# TYPE shop_operation_failure_total counter
		shop_operation_failure_total{operation="GET /boom"} 1
	`
	require.NoError(t, testutil.GatherAndCompare(registry,
		strings.NewReader(failure), "shop_operation_failure_total"))
}

func TestMetricsNilCollectorPassesThrough(t *testing.T) {
	t.Parallel()

	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
