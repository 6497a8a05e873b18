package driver

import "context"

// Counter exposes a Repository's counts with plain string statuses, the
// shape the subscription service consumes.
type Counter struct {
	repo Repository
}

func NewCounter(repo Repository) *Counter {
	return &Counter{repo: repo}
}

func (c *Counter) CountDrivers(ctx context.Context, userID string) (int64, error) {
	return c.repo.Count(ctx, userID)
}

func (c *Counter) CountDriversByStatus(ctx context.Context, userID, status string) (int64, error) {
	return c.repo.CountByStatus(ctx, userID, Status(status))
}
