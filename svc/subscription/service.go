package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fleetdesk/pkg/logger"
)

const defaultCreateAttempts = 3

// Service owns the subscription lifecycle and the entitlement checks.
type Service struct {
	catalog  *Catalog
	store    Store
	drivers  DriverCounter
	now      func() time.Time
	log      *slog.Logger
	metrics  *Metrics
	attempts int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock replaces time.Now. Tests use it to pin the clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithCreateAttempts bounds how often GetOrCreate retries after losing a
// provisioning race.
func WithCreateAttempts(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func NewService(catalog *Catalog, store Store, drivers DriverCounter, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:  catalog,
		store:    store,
		drivers:  drivers,
		now:      time.Now,
		log:      logger.Discard(),
		attempts: defaultCreateAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("subscription"))
	return s
}

// Catalog returns the plans the service assigns from.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// GetOrCreate returns the user's subscription, provisioning a starter trial
// on first access. Concurrent first accesses converge on one record: the
// loser of the insert race re-reads the winner's record.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*Subscription, error) {
	for range s.attempts {
		sub, err := s.store.Get(ctx, userID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, ErrNoSubscription) {
			return nil, err
		}

		sub, err = s.newTrial(userID)
		if err != nil {
			return nil, err
		}
		err = s.store.Create(ctx, sub)
		if err == nil {
			s.metrics.incProvisioned()
			s.log.InfoContext(ctx, "trial subscription provisioned",
				logger.UserID(userID),
				logger.Plan(string(sub.Plan)),
				slog.Time("trial_end", sub.CurrentPeriodEnd),
			)
			return sub, nil
		}
		if !errors.Is(err, ErrSubscriptionExists) {
			return nil, err
		}
	}
	return nil, ErrProvisionConflict
}

func (s *Service) newTrial(userID string) (*Subscription, error) {
	plan, err := s.catalog.Get(PlanStarter)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	end := now.AddDate(0, 0, plan.TrialDays)
	sub := &Subscription{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Status:             StatusTrialing,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   end,
		TrialEnd:           &end,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	sub.applyPlan(plan)
	return sub, nil
}

// Subscribe assigns planID as a fresh paid month, creating the record when
// the user has none. It overwrites any existing state and performs no
// downgrade check.
func (s *Service) Subscribe(ctx context.Context, userID string, planID PlanID) (*Subscription, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	sub, err := s.store.Get(ctx, userID)
	create := errors.Is(err, ErrNoSubscription)
	switch {
	case create:
		sub = &Subscription{ID: uuid.NewString(), UserID: userID, Status: StatusActive, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	sub.applyPlan(plan)
	if fire(ctx, sub, EventActivate) {
		s.metrics.incTransition(EventActivate)
	}
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = now.AddDate(0, 1, 0)
	sub.TrialEnd = nil
	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = now

	if create {
		err = s.store.Create(ctx, sub)
		if errors.Is(err, ErrSubscriptionExists) {
			err = s.overwrite(ctx, sub)
		}
	} else {
		err = s.store.Save(ctx, sub)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.incPlanChange(plan.ID, "subscribed")
	s.log.InfoContext(ctx, "subscribed to plan", logger.UserID(userID), logger.Plan(string(plan.ID)))
	return sub, nil
}

// overwrite replaces a record created concurrently, keeping its identity.
func (s *Service) overwrite(ctx context.Context, sub *Subscription) error {
	existing, err := s.store.Get(ctx, sub.UserID)
	if err != nil {
		return err
	}
	sub.ID = existing.ID
	sub.CreatedAt = existing.CreatedAt
	return s.store.Save(ctx, sub)
}

// ChangePlan moves an existing subscription to planID. Moving to a capped
// plan below the current cap is refused while the user owns more drivers
// than the target allows. Status and period are left alone.
func (s *Service) ChangePlan(ctx context.Context, userID string, planID PlanID) (*Subscription, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// An unlimited snapshot is above every finite cap.
	shrinking := !plan.Unlimited() && (sub.Unlimited() || plan.Features.MaxDrivers < sub.MaxDrivers)
	if shrinking {
		count, err := s.drivers.CountDrivers(ctx, userID)
		if err != nil {
			return nil, errors.Join(ErrFailedToCountUsage, err)
		}
		if count > plan.Features.MaxDrivers {
			s.metrics.incPlanChange(plan.ID, "blocked")
			s.log.InfoContext(ctx, "downgrade blocked",
				logger.UserID(userID),
				logger.Plan(string(plan.ID)),
				slog.Int64("drivers", count),
			)
			return nil, &DowngradeBlockedError{
				PlanName: plan.Name,
				Current:  count,
				Allowed:  plan.Features.MaxDrivers,
			}
		}
	}

	from := sub.Plan
	sub.applyPlan(plan)
	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = s.clock()
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.metrics.incPlanChange(plan.ID, "changed")
	s.log.InfoContext(ctx, "plan changed",
		logger.UserID(userID),
		slog.String("from", string(from)),
		logger.Plan(string(plan.ID)),
	)
	return sub, nil
}

// CancelAtPeriodEnd flags the subscription to lapse when the period ends.
// Access continues until then.
func (s *Service) CancelAtPeriodEnd(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	sub.UpdatedAt = s.clock()
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "cancellation scheduled", logger.UserID(userID))
	return sub, nil
}

// Resume clears a scheduled cancellation. Canceled and expired subscriptions
// are reactivated for another month.
func (s *Service) Resume(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	sub.CancelAtPeriodEnd = false
	if fire(ctx, sub, EventResume) {
		sub.CurrentPeriodEnd = now.AddDate(0, 1, 0)
		s.metrics.incTransition(EventResume)
	}
	sub.UpdatedAt = now
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "subscription resumed", logger.UserID(userID), logger.Status(string(sub.Status)))
	return sub, nil
}

// RequireActive returns the user's subscription when it grants access.
// A subscription whose period has ended is persisted as expired.
func (s *Service) RequireActive(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !sub.IsActive() {
		return nil, s.deny(ctx, userID, &InactiveError{Status: sub.Status})
	}

	now := s.clock()
	if sub.IsExpiredAt(now) {
		if fire(ctx, sub, EventExpire) {
			sub.UpdatedAt = now
			if err := s.store.Save(ctx, sub); err != nil {
				return nil, err
			}
			s.metrics.incTransition(EventExpire)
			s.log.InfoContext(ctx, "subscription expired",
				logger.UserID(userID),
				logger.Plan(string(sub.Plan)),
				slog.Time("period_end", sub.CurrentPeriodEnd),
			)
		}
		return nil, s.deny(ctx, userID, &ExpiredError{Status: sub.Status})
	}
	return sub, nil
}

// CheckDriverLimit passes while the user is below the driver cap. It does
// not provision a missing subscription.
func (s *Service) CheckDriverLimit(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.Unlimited() {
		return sub, nil
	}

	count, err := s.drivers.CountDrivers(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFailedToCountUsage, err)
	}
	if count >= sub.MaxDrivers {
		return nil, s.deny(ctx, userID, &DriverLimitError{Current: count, Max: sub.MaxDrivers, Plan: sub.Plan})
	}
	return sub, nil
}

// RequireFeature passes when the subscription snapshot enables feature.
// It does not provision a missing subscription.
func (s *Service) RequireFeature(ctx context.Context, userID string, feature Feature) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Features.Enabled(feature) {
		return nil, s.deny(ctx, userID, &FeatureError{Feature: feature, Plan: sub.Plan})
	}
	return sub, nil
}

type codedError interface {
	error
	Code() string
}

func (s *Service) deny(ctx context.Context, userID string, err codedError) error {
	s.metrics.incDenial(err.Code())
	s.log.DebugContext(ctx, "entitlement denied", logger.UserID(userID), logger.Code(err.Code()))
	return err
}
