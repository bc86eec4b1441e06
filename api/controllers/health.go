package controllers

import (
	"net/http"

	"github.com/cuentasclaras/payables-backend/api/responses"
	"github.com/cuentasclaras/payables-backend/pkg/config"
	"github.com/cuentasclaras/payables-backend/pkg/db"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Payables-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady also pings the database so the probe fails before traffic does.
func HealthReady(cfg *config.Config, dbClient *db.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Payables-Env", cfg.App.Env)
		if dbClient != nil {
			if err := dbClient.Ping(r.Context()); err != nil {
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
