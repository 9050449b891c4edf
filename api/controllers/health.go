package controllers

import (
	"context"
	"net/http"

	"github.com/nevbird/storefront-api/api/responses"
	"github.com/nevbird/storefront-api/pkg/config"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/logger"
)

// Pinger is the readiness check a backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Nevbird-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the durable slot backend is reachable. A nil pinger
// (memory-only mode) is always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Nevbird-Env", cfg.App.Env)

		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
