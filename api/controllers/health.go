package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RestoreTracker reports whether the stored session is still being adopted.
type RestoreTracker interface {
	Restoring() bool
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady is ready once the session has been restored and the storage
// backend answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger, session RestoreTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		if session.Restoring() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTransient, "session restore in progress"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "storage backend unavailable").
				WithDetails(map[string]any{"storage_driver": cfg.Storage.Driver}))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready", "storage": cfg.Storage.Driver})
	}
}
