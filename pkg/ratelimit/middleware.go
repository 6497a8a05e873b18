package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/fleetdesk/pkg/clientip"
)

// KeyFunc picks the bucket a request is counted against. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ByClientIP keys requests by client address, preferring the one
// clientip.Middleware resolved. Unresolvable addresses are not limited.
func ByClientIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.GetIP(r)
}

// LimitReachedFunc renders a rejected request.
type LimitReachedFunc func(w http.ResponseWriter, r *http.Request, res *Result)

type middlewareOptions struct {
	onLimit LimitReachedFunc
	onError func(r *http.Request, err error)
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

func WithOnLimitReached(fn LimitReachedFunc) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.onLimit = fn
		}
	}
}

// WithOnStoreError is notified when the limiter fails and the request is let through.
func WithOnStoreError(fn func(r *http.Request, err error)) MiddlewareOption {
	return func(o *middlewareOptions) { o.onError = fn }
}

// Middleware enforces limiter per key. Limiter failures let the request through.
func Middleware(limiter Limiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if keyFunc == nil {
		panic("ratelimit.Middleware: keyFunc is required")
	}
	o := &middlewareOptions{
		onLimit: func(w http.ResponseWriter, _ *http.Request, _ *Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				if o.onError != nil {
					o.onError(r, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := max(int(res.RetryAfter(time.Now()).Seconds()), 1)
				h.Set("Retry-After", strconv.Itoa(retry))
				o.onLimit(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
