package subscription

import "context"

// Store persists subscriptions keyed by user id. Implementations must
// enforce at most one record per user.
type Store interface {
	// Get returns ErrNoSubscription when the user has no record.
	Get(ctx context.Context, userID string) (*Subscription, error)
	// Create returns ErrSubscriptionExists when the user already has a record.
	Create(ctx context.Context, sub *Subscription) error
	// Save replaces the user's record. Last write wins.
	Save(ctx context.Context, sub *Subscription) error
}

// DriverCounter reports how many drivers a user owns.
type DriverCounter interface {
	CountDrivers(ctx context.Context, userID string) (int64, error)
	CountDriversByStatus(ctx context.Context, userID, status string) (int64, error)
}
