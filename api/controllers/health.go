package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/pickspot/vendor-portal/api/responses"
	"github.com/pickspot/vendor-portal/pkg/config"
	pkgerrors "github.com/pickspot/vendor-portal/pkg/errors"
	"github.com/pickspot/vendor-portal/pkg/logger"
)

// Pinger is the health-check surface a dependency exposes.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pickspot-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every dependency and reports them together, so a single
// probe shows all failing dependencies at once.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pickspot-Env", cfg.App.Env)

		var combined error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				combined = multierr.Append(combined, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
			}
		}
		if combined != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
