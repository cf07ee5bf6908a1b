package controllers

import (
	"net/http"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tinbari-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cacheP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tinbari-Env", cfg.App.Env)

		checks := map[string]string{"db": "ok"}
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}

		if cacheP != nil {
			if err := cacheP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
			checks["redis"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
