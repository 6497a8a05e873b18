package subscription

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/fleetdesk/handler"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
)

type contextKey struct{}

// WithSubscription stores sub in ctx for downstream handlers.
func WithSubscription(ctx context.Context, sub *Subscription) context.Context {
	return context.WithValue(ctx, contextKey{}, sub)
}

// FromContext returns the subscription loaded by a Gate middleware.
func FromContext(ctx context.Context) (*Subscription, bool) {
	sub, ok := ctx.Value(contextKey{}).(*Subscription)
	return sub, ok && sub != nil
}

// UserIDFunc resolves the authenticated user of a request.
// An empty result means the request is unauthenticated.
type UserIDFunc func(r *http.Request) string

// ErrorWriter renders a denial.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate builds entitlement middlewares around a Service.
type Gate struct {
	svc     *Service
	userID  UserIDFunc
	onError ErrorWriter
}

type GateOption func(*Gate)

func WithUserIDFunc(fn UserIDFunc) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.userID = fn
		}
	}
}

func WithErrorWriter(fn ErrorWriter) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.onError = fn
		}
	}
}

// NewGate returns a Gate that reads the user from JWT claims and writes
// denials as JSON error bodies.
func NewGate(svc *Service, opts ...GateOption) *Gate {
	g := &Gate{
		svc: svc,
		userID: func(r *http.Request) string {
			return jwt.UserID(r.Context())
		},
		onError: func(w http.ResponseWriter, r *http.Request, err error) {
			handler.WriteError(w, r, nil, err)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type check func(ctx context.Context, userID string) (*Subscription, error)

func (g *Gate) guard(fn check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := g.userID(r)
			if userID == "" {
				g.onError(w, r, handler.ErrUnauthorized)
				return
			}

			sub, err := fn(r.Context(), userID)
			if err != nil {
				// A missing record denies access rather than reporting not found.
				if errors.Is(err, ErrNoSubscription) {
					err = ErrNoSubscription.WithStatus(http.StatusForbidden)
				}
				g.onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubscription(r.Context(), sub)))
		})
	}
}

// RequireActiveSubscription admits users whose subscription is active or
// trialing and within its period. First-time users get a starter trial.
func (g *Gate) RequireActiveSubscription(next http.Handler) http.Handler {
	return g.guard(g.svc.RequireActive)(next)
}

// CheckDriverLimit admits users below their plan's driver cap.
func (g *Gate) CheckDriverLimit(next http.Handler) http.Handler {
	return g.guard(g.svc.CheckDriverLimit)(next)
}

// RequireFeature admits users whose plan enables feature.
func (g *Gate) RequireFeature(feature Feature) func(http.Handler) http.Handler {
	return g.guard(func(ctx context.Context, userID string) (*Subscription, error) {
		return g.svc.RequireFeature(ctx, userID, feature)
	})
}
