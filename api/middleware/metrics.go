package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rafidahmed/tinbari-backend/pkg/metrics"
)

// Metrics records per-route durations and outcomes. A nil collector is a
// no-op.
func Metrics(m *metrics.OperationMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			m.Track(r.Method+" "+routePattern(r), start, statusErr(rec.status))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// statusErr maps a 5xx response to an error so Track counts it as a failure.
func statusErr(status int) error {
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("http status %d", status)
	}
	return nil
}
