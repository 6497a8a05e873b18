package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Driver statuses counted by UsageStats. They mirror the driver package.
const (
	driverActive   = "active"
	driverInactive = "inactive"
	driverPending  = "pending"
)

// DriverLimit renders as a number, or "Unlimited" when there is no cap.
type DriverLimit struct {
	Max       int64
	Unlimited bool
}

func (l DriverLimit) MarshalJSON() ([]byte, error) {
	if l.Unlimited {
		return json.Marshal("Unlimited")
	}
	return json.Marshal(l.Max)
}

func limitOf(sub *Subscription) DriverLimit {
	return DriverLimit{Max: sub.MaxDrivers, Unlimited: sub.Unlimited()}
}

// Limits is the driver allowance of a subscription at a point in time.
type Limits struct {
	Plan           PlanID      `json:"plan"`
	Status         Status      `json:"status"`
	CurrentDrivers int64       `json:"currentDrivers"`
	MaxDrivers     DriverLimit `json:"maxDrivers"`
	CanAddDriver   bool        `json:"canAddDriver"`
	Features       Features    `json:"features"`
}

// CheckLimits reports the current driver count against the cap.
func (s *Service) CheckLimits(ctx context.Context, userID string) (*Limits, error) {
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.drivers.CountDrivers(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFailedToCountUsage, err)
	}

	return &Limits{
		Plan:           sub.Plan,
		Status:         sub.Status,
		CurrentDrivers: count,
		MaxDrivers:     limitOf(sub),
		CanAddDriver:   sub.Unlimited() || count < sub.MaxDrivers,
		Features:       sub.Features,
	}, nil
}

type UsageSubscription struct {
	Plan              PlanID    `json:"plan"`
	Status            Status    `json:"status"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
	DaysRemaining     int       `json:"daysRemaining"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}

type UsageCounts struct {
	TotalDrivers    int64       `json:"totalDrivers"`
	ActiveDrivers   int64       `json:"activeDrivers"`
	InactiveDrivers int64       `json:"inactiveDrivers"`
	PendingDrivers  int64       `json:"pendingDrivers"`
	MaxDrivers      DriverLimit `json:"maxDrivers"`
	UsagePercentage int64       `json:"usagePercentage"`
}

// Usage is the dashboard summary of a subscription.
type Usage struct {
	Subscription UsageSubscription `json:"subscription"`
	Usage        UsageCounts       `json:"usage"`
	Features     Features          `json:"features"`
}

// UsageStats summarizes the subscription and the driver counts by status.
// The percentage is not clamped, so a user above the cap reads over 100.
func (s *Service) UsageStats(ctx context.Context, userID string) (*Usage, error) {
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var counts UsageCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.TotalDrivers, err = s.drivers.CountDrivers(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		counts.ActiveDrivers, err = s.drivers.CountDriversByStatus(gctx, userID, driverActive)
		return err
	})
	g.Go(func() (err error) {
		counts.InactiveDrivers, err = s.drivers.CountDriversByStatus(gctx, userID, driverInactive)
		return err
	})
	g.Go(func() (err error) {
		counts.PendingDrivers, err = s.drivers.CountDriversByStatus(gctx, userID, driverPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Join(ErrFailedToCountUsage, err)
	}

	counts.MaxDrivers = limitOf(sub)
	if !sub.Unlimited() && sub.MaxDrivers > 0 {
		counts.UsagePercentage = int64(math.Round(float64(counts.TotalDrivers) * 100 / float64(sub.MaxDrivers)))
	}

	return &Usage{
		Subscription: UsageSubscription{
			Plan:              sub.Plan,
			Status:            sub.Status,
			CurrentPeriodEnd:  sub.CurrentPeriodEnd,
			DaysRemaining:     sub.DaysRemainingAt(s.clock()),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		},
		Usage:    counts,
		Features: sub.Features,
	}, nil
}
