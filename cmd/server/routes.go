package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/fleetdesk/handler"
	"github.com/dmitrymomot/fleetdesk/modules/billing"
	"github.com/dmitrymomot/fleetdesk/modules/fleet"
	"github.com/dmitrymomot/fleetdesk/pkg/clientip"
	"github.com/dmitrymomot/fleetdesk/pkg/httpserver"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/pkg/ratelimit"
	"github.com/dmitrymomot/fleetdesk/pkg/requestid"
	"github.com/dmitrymomot/fleetdesk/svc/driver"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

type app struct {
	log           *slog.Logger
	tokens        *jwt.Service
	subscriptions *subscription.Service
	drivers       *driver.Service
	limiter       ratelimit.Limiter
	gatherer      prometheus.Gatherer
	checks        []httpserver.Check
	readyTimeout  time.Duration
}

func (a *app) writeError(w http.ResponseWriter, r *http.Request, err error) {
	handler.WriteError(w, r, a.log, err)
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, handler.ErrMethodNotAllowed)
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, a.readyTimeout, a.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	auth := jwt.Middleware(jwt.MiddlewareConfig{
		Service: a.tokens,
		OnError: func(w http.ResponseWriter, r *http.Request, _ error) {
			a.writeError(w, r, handler.ErrUnauthorized)
		},
	})
	rateLimit := ratelimit.Middleware(a.limiter, billing.RateLimitKey,
		ratelimit.WithOnLimitReached(func(w http.ResponseWriter, r *http.Request, _ *ratelimit.Result) {
			a.writeError(w, r, handler.ErrTooManyRequests)
		}),
		ratelimit.WithOnStoreError(func(r *http.Request, err error) {
			a.log.WarnContext(r.Context(), "rate limiter unavailable", logger.Error(err))
		}),
	)
	gate := subscription.NewGate(a.subscriptions, subscription.WithErrorWriter(a.writeError))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", billing.Router(billing.RouterOptions{
			Subscriptions: a.subscriptions,
			Auth:          auth,
			RateLimit:     rateLimit,
			Logger:        a.log,
		}))
		r.Mount("/drivers", fleet.Router(fleet.RouterOptions{
			Drivers: a.drivers,
			Gate:    gate,
			Auth:    auth,
			Logger:  a.log,
		}))
	})

	return r
}
