// Package fleet serves the driver roster behind the subscription gates.
package fleet

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/svc/driver"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

// RouterOptions configures the fleet module. Drivers and Gate are required.
type RouterOptions struct {
	Drivers *driver.Service
	Gate    *subscription.Gate

	// Auth authenticates every route.
	Auth func(http.Handler) http.Handler

	Logger *slog.Logger
}

// Router serves the driver roster of the authenticated fleet owner. It is
// meant to be mounted at /drivers.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	h := &handlers{drivers: opts.Drivers, log: log.With(logger.Component("fleet"))}
	gate := opts.Gate

	r := chi.NewRouter()
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}

	r.Get("/", h.list())
	r.With(gate.RequireActiveSubscription, gate.CheckDriverLimit).Post("/", h.create())
	r.With(gate.RequireFeature(subscription.FeatureAdvancedAnalytics)).Get("/stats", h.stats())
	r.Get("/expiring", h.expiring())

	r.Get("/{id}", h.get())
	r.Put("/{id}", h.update())
	r.Delete("/{id}", h.remove())

	return r
}
