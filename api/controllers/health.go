package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/universalautobrokers/dealerdesk-backend/api/responses"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/config"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
)

// Pinger is the health-check surface a dependency must expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DealerDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every registered dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DealerDesk-Env", cfg.App.Env)

		var errs error
		failing := []string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
				failing = append(failing, name)
			}
		}

		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable")
			responses.WriteError(r.Context(), logg, w, err.WithDetails(map[string]any{"failing": failing}))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
