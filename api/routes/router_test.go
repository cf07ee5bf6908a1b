package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "tinbari", ExpirationMinutes: 15}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewRouter(cfg, logg, okPinger{}, nil, nil, nil, Services{})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	for _, path := range []string{"/api/v1/sales", "/api/v1/inventory/groups", "/api/v1/reports/summary"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
