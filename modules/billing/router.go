// Package billing serves the plan catalog and the subscription lifecycle
// of the authenticated fleet owner.
package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/fleetdesk/pkg/clientip"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

type Middleware = func(http.Handler) http.Handler

// RouterOptions configures the billing module. Subscriptions is required;
// the middlewares are optional.
type RouterOptions struct {
	Subscriptions *subscription.Service

	// Auth authenticates every /subscription route. /plans stays public.
	Auth Middleware
	// RateLimit guards the routes that change a subscription.
	RateLimit Middleware

	Logger *slog.Logger
}

// Router mounts the plan catalog and the subscription endpoints.
//
//	r.Mount("/", billing.Router(billing.RouterOptions{
//		Subscriptions: svc,
//		Auth:          jwt.Middleware(jwt.MiddlewareConfig{Service: tokens}),
//		RateLimit:     ratelimit.Middleware(limiter, billing.RateLimitKey),
//	}))
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	h := &handlers{svc: opts.Subscriptions, log: log.With(logger.Component("billing"))}

	r := chi.NewRouter()
	r.Get("/plans", h.wrapNoBody(h.listPlans))

	r.Route("/subscription", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		r.Get("/", h.wrapNoBody(h.getSubscription))
		r.Get("/limits", h.wrapNoBody(h.limits))
		r.Get("/usage", h.wrapNoBody(h.usage))

		r.Group(func(r chi.Router) {
			if opts.RateLimit != nil {
				r.Use(opts.RateLimit)
			}
			r.Post("/", h.wrapPlan(h.subscribe))
			r.Patch("/", h.wrapPlan(h.changePlan))
			r.Post("/cancel", h.wrapNoBody(h.cancel))
			r.Post("/resume", h.wrapNoBody(h.resume))
		})
	})

	return r
}

// RateLimitKey buckets authenticated requests by user and the rest by
// client address.
func RateLimitKey(r *http.Request) string {
	if id := jwt.UserID(r.Context()); id != "" {
		return "billing:user:" + id
	}
	if ip := clientip.GetIP(r); ip != "" {
		return "billing:ip:" + ip
	}
	return ""
}
