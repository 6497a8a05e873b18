package driver

import (
	"context"
	"time"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Filter narrows List. A zero Status matches every status.
type Filter struct {
	Status Status
	Page   int
	Limit  int
}

// Normalized clamps paging to page >= 1 and 1 <= limit <= 100.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	f.Limit = min(f.Limit, maxPageLimit)
	return f
}

func (f Filter) skip() int {
	return (f.Page - 1) * f.Limit
}

// Repository stores drivers. Email and license number are unique across
// all users; every other operation is scoped to the owning user.
type Repository interface {
	// Create returns ErrDuplicateEmail or ErrDuplicateLicense on a unique clash.
	Create(ctx context.Context, d *Driver) error
	// Get returns ErrNotFound unless userID owns the driver.
	Get(ctx context.Context, userID, id string) (*Driver, error)
	// Update replaces the stored driver with the same ID and owner. It
	// returns ErrNotFound or a duplicate error.
	Update(ctx context.Context, d *Driver) error
	// Delete returns ErrNotFound unless userID owns the driver.
	Delete(ctx context.Context, userID, id string) error
	// List returns one page, newest first, and the total matching count.
	List(ctx context.Context, userID string, f Filter) ([]Driver, int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, userID string, status Status) (int64, error)
	// ExpiringBefore returns drivers whose license expires before until,
	// soonest first. Already expired licenses are included.
	ExpiringBefore(ctx context.Context, userID string, until time.Time) ([]Driver, error)
	CountExpiringBefore(ctx context.Context, userID string, until time.Time) (int64, error)
}
