package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/pkg/config"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports that the process is up.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Harborlight-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing services and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		w.Header().Set("X-Harborlight-Env", cfg.App.Env)

		statuses := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "not configured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				healthy = false
				statuses[name] = err.Error()
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}

// ReadinessDeps assembles the dependency map for HealthReady, skipping nils
// so optional services do not fail readiness.
func ReadinessDeps(dbP, redisP, gcsP pinger) map[string]pinger {
	deps := map[string]pinger{}
	if dbP != nil {
		deps["postgres"] = dbP
	}
	if redisP != nil {
		deps["redis"] = redisP
	}
	if gcsP != nil {
		deps["gcs"] = gcsP
	}
	return deps
}
