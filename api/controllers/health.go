package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gastrohub/console-backend/api/responses"
	"github.com/gastrohub/console-backend/pkg/config"
	"github.com/gastrohub/console-backend/pkg/logger"
)

const healthEnvHeader = "X-GastroHub-Env"

// Pinger is any dependency with a health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(healthEnvHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, platformP Pinger) http.HandlerFunc {
	checks := map[string]Pinger{
		"database": dbP,
		"redis":    redisP,
		"platform": platformP,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(healthEnvHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		statuses := map[string]string{}
		healthy := true
		for name, pinger := range checks {
			if pinger == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				statuses[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, statuses)
			return
		}
		responses.WriteSuccess(w, statuses)
	}
}
