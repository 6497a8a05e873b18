package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is zero for allowed requests.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Store keeps per-key counters that expire with their window.
type Store interface {
	// Increment adds one hit to key and returns the hits counted in the
	// current window together with the time left until it closes.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter answers whether a key may perform one more request.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// FixedWindow counts hits per key in consecutive windows of equal length.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindow allows limit requests per key in every window.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	switch {
	case store == nil:
		return nil, ErrStoreRequired
	case limit <= 0:
		return nil, ErrInvalidLimit
	case window <= 0:
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{store: store, limit: limit, window: window, now: time.Now}, nil
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if ttl <= 0 {
		ttl = l.window
	}

	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(l.limit-int(count), 0),
		ResetAt:   l.now().Add(ttl),
	}, nil
}
