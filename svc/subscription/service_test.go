package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

var epoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: epoch} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type driverCounts struct {
	active, inactive, pending int64
}

// fakeDrivers is read-only once a test starts.
type fakeDrivers struct {
	counts map[string]driverCounts
	err    error
}

func drivers(userID string, c driverCounts) *fakeDrivers {
	return &fakeDrivers{counts: map[string]driverCounts{userID: c}}
}

func (f *fakeDrivers) CountDrivers(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	c := f.counts[userID]
	return c.active + c.inactive + c.pending, nil
}

func (f *fakeDrivers) CountDriversByStatus(_ context.Context, userID, status string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	c := f.counts[userID]
	switch status {
	case "active":
		return c.active, nil
	case "inactive":
		return c.inactive, nil
	case "pending":
		return c.pending, nil
	}
	return 0, nil
}

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) CountDrivers(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCounter) CountDriversByStatus(ctx context.Context, userID, status string) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

func newService(t *testing.T, counter subscription.DriverCounter, opts ...subscription.ServiceOption) (*subscription.Service, *subscription.MemoryStore, *clock) {
	t.Helper()
	if counter == nil {
		counter = &fakeDrivers{}
	}
	clk := newClock()
	store := subscription.NewMemoryStore()
	opts = append([]subscription.ServiceOption{subscription.WithClock(clk.Now)}, opts...)
	return subscription.NewService(subscription.DefaultCatalog(), store, counter, opts...), store, clk
}

func TestService_GetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("provisions a starter trial", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)

		sub, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", sub.UserID)
		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, subscription.PlanStarter, sub.Plan)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, epoch, sub.CurrentPeriodStart)
		assert.Equal(t, epoch.AddDate(0, 0, 14), sub.CurrentPeriodEnd)
		require.NotNil(t, sub.TrialEnd)
		assert.Equal(t, sub.CurrentPeriodEnd, *sub.TrialEnd)
		assert.EqualValues(t, 25, sub.MaxDrivers)
		assert.False(t, sub.CancelAtPeriodEnd)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("returns the existing record", func(t *testing.T) {
		t.Parallel()
		svc, _, clk := newService(t, nil)

		first, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		clk.Advance(time.Hour)
		second, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("concurrent first access creates one record", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)

		const n = 32
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub, err := svc.GetOrCreate(ctx, "u1")
				if assert.NoError(t, err) {
					ids[i] = sub.ID
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, store.Len())
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("loser of the insert race re-reads", func(t *testing.T) {
		t.Parallel()
		store := &racingStore{MemoryStore: subscription.NewMemoryStore()}
		svc := subscription.NewService(subscription.DefaultCatalog(), store, &fakeDrivers{})

		sub, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "winner", sub.ID)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewService(subscription.DefaultCatalog(), stuckStore{}, &fakeDrivers{},
			subscription.WithCreateAttempts(2))

		_, err := svc.GetOrCreate(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrProvisionConflict)
	})
}

// racingStore lets another writer win the first insert.
type racingStore struct {
	*subscription.MemoryStore
	once sync.Once
}

func (s *racingStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	raced := false
	s.once.Do(func() {
		winner := sub.Clone()
		winner.ID = "winner"
		_ = s.MemoryStore.Create(ctx, winner)
		raced = true
	})
	if raced {
		return subscription.ErrSubscriptionExists
	}
	return s.MemoryStore.Create(ctx, sub)
}

// stuckStore never finds a record and always reports one exists.
type stuckStore struct{}

func (stuckStore) Get(context.Context, string) (*subscription.Subscription, error) {
	return nil, subscription.ErrNoSubscription
}
func (stuckStore) Create(context.Context, *subscription.Subscription) error {
	return subscription.ErrSubscriptionExists
}
func (stuckStore) Save(context.Context, *subscription.Subscription) error { return nil }

func TestService_Subscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid plan creates nothing", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)
		_, err := svc.Subscribe(ctx, "u1", "gold")
		assert.ErrorIs(t, err, subscription.ErrInvalidPlan)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("creates an active month", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		sub, err := svc.Subscribe(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanProfessional, sub.Plan)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, epoch, sub.CurrentPeriodStart)
		assert.Equal(t, time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC), sub.CurrentPeriodEnd)
		assert.Nil(t, sub.TrialEnd)
		assert.EqualValues(t, 100, sub.MaxDrivers)
		assert.True(t, sub.Features.AdvancedAnalytics)
	})

	t.Run("overwrites a trial in place", func(t *testing.T) {
		t.Parallel()
		svc, store, clk := newService(t, nil)
		trial, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.CancelAtPeriodEnd(ctx, "u1")
		require.NoError(t, err)

		clk.Advance(48 * time.Hour)
		sub, err := svc.Subscribe(ctx, "u1", subscription.PlanEnterprise)
		require.NoError(t, err)
		assert.Equal(t, trial.ID, sub.ID)
		assert.Equal(t, trial.CreatedAt, sub.CreatedAt)
		assert.False(t, sub.CancelAtPeriodEnd)
		assert.Nil(t, sub.TrialEnd)
		assert.True(t, sub.Unlimited())
		assert.Equal(t, epoch.Add(48*time.Hour), sub.CurrentPeriodStart)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("reactivates an expired record", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)
		require.NoError(t, store.Save(ctx, &subscription.Subscription{
			ID: "s1", UserID: "u1", Plan: subscription.PlanStarter, Status: subscription.StatusExpired,
		}))

		sub, err := svc.Subscribe(ctx, "u1", subscription.PlanStarter)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})
}

func TestService_ChangePlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no subscription", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		_, err := svc.ChangePlan(ctx, "u1", subscription.PlanStarter)
		assert.ErrorIs(t, err, subscription.ErrNoSubscription)
	})

	t.Run("invalid plan", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		_, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.ChangePlan(ctx, "u1", "gold")
		assert.ErrorIs(t, err, subscription.ErrInvalidPlan)
	})

	t.Run("downgrade blocked above target cap", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, drivers("u1", driverCounts{active: 28, pending: 2}))
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)

		_, err = svc.ChangePlan(ctx, "u1", subscription.PlanStarter)
		var blocked *subscription.DowngradeBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.EqualValues(t, 30, blocked.Current)
		assert.EqualValues(t, 25, blocked.Allowed)
		assert.EqualValues(t, 5, blocked.Remove())
		assert.Equal(t,
			"Cannot downgrade to Starter plan. You have 30 drivers but this plan only allows 25. Please remove 5 driver(s) first.",
			blocked.Error())

		stored, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanProfessional, stored.Plan)
	})

	t.Run("downgrade from unlimited is checked", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 500}))
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanEnterprise)
		require.NoError(t, err)

		_, err = svc.ChangePlan(ctx, "u1", subscription.PlanStarter)
		var blocked *subscription.DowngradeBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.EqualValues(t, 475, blocked.Remove())
	})

	t.Run("downgrade at the cap succeeds", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 25}))
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)
		_, err = svc.CancelAtPeriodEnd(ctx, "u1")
		require.NoError(t, err)

		sub, err := svc.ChangePlan(ctx, "u1", subscription.PlanStarter)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanStarter, sub.Plan)
		assert.EqualValues(t, 25, sub.MaxDrivers)
		assert.False(t, sub.Features.AdvancedAnalytics)
		assert.False(t, sub.CancelAtPeriodEnd)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})

	t.Run("upgrade keeps status and period without counting", func(t *testing.T) {
		t.Parallel()
		counter := &mockCounter{}
		svc, _, clk := newService(t, counter)
		trial, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)

		clk.Advance(time.Hour)
		sub, err := svc.ChangePlan(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, trial.CurrentPeriodEnd, sub.CurrentPeriodEnd)
		assert.EqualValues(t, 100, sub.MaxDrivers)
		counter.AssertNotCalled(t, "CountDrivers", mock.Anything, mock.Anything)
	})

	t.Run("count failure", func(t *testing.T) {
		t.Parallel()
		counter := &mockCounter{}
		counter.On("CountDrivers", mock.Anything, "u1").Return(int64(0), errors.New("db down"))
		svc, _, _ := newService(t, counter)
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)

		_, err = svc.ChangePlan(ctx, "u1", subscription.PlanStarter)
		assert.ErrorIs(t, err, subscription.ErrFailedToCountUsage)
		counter.AssertExpectations(t)
	})
}

func TestService_CancelResume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		_, err := svc.CancelAtPeriodEnd(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrNoSubscription)
		_, err = svc.Resume(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrNoSubscription)
	})

	t.Run("cancel only sets the flag", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		trial, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)

		sub, err := svc.CancelAtPeriodEnd(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, sub.CancelAtPeriodEnd)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, trial.CurrentPeriodEnd, sub.CurrentPeriodEnd)

		again, err := svc.CancelAtPeriodEnd(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, again.CancelAtPeriodEnd)
	})

	t.Run("resume clears the flag of a live subscription", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, nil)
		trial, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.CancelAtPeriodEnd(ctx, "u1")
		require.NoError(t, err)

		sub, err := svc.Resume(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, sub.CancelAtPeriodEnd)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, trial.CurrentPeriodEnd, sub.CurrentPeriodEnd)
	})

	for _, status := range []subscription.Status{subscription.StatusCanceled, subscription.StatusExpired} {
		t.Run("resume reactivates "+string(status), func(t *testing.T) {
			t.Parallel()
			svc, store, _ := newService(t, nil)
			require.NoError(t, store.Save(ctx, &subscription.Subscription{
				ID:                 "s1",
				UserID:             "u1",
				Plan:               subscription.PlanStarter,
				Status:             status,
				CurrentPeriodStart: epoch.AddDate(0, -2, 0),
				CurrentPeriodEnd:   epoch.AddDate(0, -1, 0),
				MaxDrivers:         25,
			}))

			sub, err := svc.Resume(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, subscription.StatusActive, sub.Status)
			assert.Equal(t, epoch.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
			assert.True(t, sub.CurrentPeriodEnd.After(sub.CurrentPeriodStart))
		})
	}
}

func TestService_RequireActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first access gets a trial", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)
		sub, err := svc.RequireActive(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("inactive status", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)
		require.NoError(t, store.Save(ctx, &subscription.Subscription{
			ID: "s1", UserID: "u1", Status: subscription.StatusPastDue, CurrentPeriodEnd: epoch.AddDate(0, 1, 0),
		}))

		_, err := svc.RequireActive(ctx, "u1")
		var inactive *subscription.InactiveError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, subscription.StatusPastDue, inactive.Status)
		assert.Equal(t, "SUBSCRIPTION_INACTIVE", inactive.Code())
	})

	t.Run("lapsed trial is persisted as expired", func(t *testing.T) {
		t.Parallel()
		svc, store, clk := newService(t, nil)
		_, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)

		clk.Advance(14*24*time.Hour + time.Second)
		_, err = svc.RequireActive(ctx, "u1")
		var expired *subscription.ExpiredError
		require.ErrorAs(t, err, &expired)
		assert.Equal(t, "SUBSCRIPTION_EXPIRED", expired.Code())

		stored, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusExpired, stored.Status)

		_, err = svc.RequireActive(ctx, "u1")
		var inactive *subscription.InactiveError
		assert.ErrorAs(t, err, &inactive)
	})

	t.Run("lapsed paid period is persisted as expired", func(t *testing.T) {
		t.Parallel()
		svc, store, clk := newService(t, nil)
		sub, err := svc.Subscribe(ctx, "u1", subscription.PlanProfessional)
		require.NoError(t, err)
		require.Equal(t, subscription.StatusActive, sub.Status)

		clk.Advance(40 * 24 * time.Hour)
		_, err = svc.RequireActive(ctx, "u1")
		var expired *subscription.ExpiredError
		require.ErrorAs(t, err, &expired)

		stored, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusExpired, stored.Status)
		assert.Equal(t, subscription.PlanProfessional, stored.Plan)
	})

	t.Run("still valid at period end", func(t *testing.T) {
		t.Parallel()
		svc, _, clk := newService(t, nil)
		_, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)

		clk.Advance(14 * 24 * time.Hour)
		_, err = svc.RequireActive(ctx, "u1")
		assert.NoError(t, err)
	})
}

func TestService_CheckDriverLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("does not provision", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newService(t, nil)
		_, err := svc.CheckDriverLimit(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrNoSubscription)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("below the cap", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 24}))
		_, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		_, err = svc.CheckDriverLimit(ctx, "u1")
		assert.NoError(t, err)
	})

	t.Run("at the cap", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 20, inactive: 5}))
		_, err := svc.GetOrCreate(ctx, "u1")
		require.NoError(t, err)

		_, err = svc.CheckDriverLimit(ctx, "u1")
		var limit *subscription.DriverLimitError
		require.ErrorAs(t, err, &limit)
		assert.EqualValues(t, 25, limit.Current)
		assert.EqualValues(t, 25, limit.Max)
		assert.Equal(t, subscription.PlanStarter, limit.Plan)
		assert.Equal(t, "Driver limit reached. Your starter plan allows 25 drivers. Upgrade to add more.", limit.Error())
	})

	t.Run("unlimited skips counting", func(t *testing.T) {
		t.Parallel()
		counter := &mockCounter{}
		svc, _, _ := newService(t, counter)
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanEnterprise)
		require.NoError(t, err)

		_, err = svc.CheckDriverLimit(ctx, "u1")
		assert.NoError(t, err)
		counter.AssertNotCalled(t, "CountDrivers", mock.Anything, mock.Anything)
	})
}

func TestService_RequireFeature(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newService(t, nil)
	_, err := svc.GetOrCreate(ctx, "starter")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, "pro", subscription.PlanProfessional)
	require.NoError(t, err)

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()
		_, err := svc.RequireFeature(ctx, "nobody", subscription.FeatureAPIAccess)
		assert.ErrorIs(t, err, subscription.ErrNoSubscription)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		_, err := svc.RequireFeature(ctx, "starter", subscription.FeatureAdvancedAnalytics)
		var fe *subscription.FeatureError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, subscription.FeatureAdvancedAnalytics, fe.Feature)
		assert.Equal(t, "This feature requires a higher plan. Your current plan is starter.", fe.Error())
	})

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()
		sub, err := svc.RequireFeature(ctx, "pro", subscription.FeatureAdvancedAnalytics)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanProfessional, sub.Plan)
	})

	t.Run("unknown feature", func(t *testing.T) {
		t.Parallel()
		_, err := svc.RequireFeature(ctx, "pro", "teleportation")
		var fe *subscription.FeatureError
		assert.ErrorAs(t, err, &fe)
	})
}

func TestService_Reports(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("limits", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 10}))
		limits, err := svc.CheckLimits(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanStarter, limits.Plan)
		assert.EqualValues(t, 10, limits.CurrentDrivers)
		assert.Equal(t, subscription.DriverLimit{Max: 25}, limits.MaxDrivers)
		assert.True(t, limits.CanAddDriver)
	})

	t.Run("limits at the cap", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 25}))
		limits, err := svc.CheckLimits(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, limits.CanAddDriver)
	})

	t.Run("unlimited limits", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 10000}))
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanEnterprise)
		require.NoError(t, err)

		limits, err := svc.CheckLimits(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, limits.MaxDrivers.Unlimited)
		assert.True(t, limits.CanAddDriver)
	})

	t.Run("usage", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 15, inactive: 3, pending: 2}))
		usage, err := svc.UsageStats(ctx, "u1")
		require.NoError(t, err)
		assert.EqualValues(t, 20, usage.Usage.TotalDrivers)
		assert.EqualValues(t, 15, usage.Usage.ActiveDrivers)
		assert.EqualValues(t, 3, usage.Usage.InactiveDrivers)
		assert.EqualValues(t, 2, usage.Usage.PendingDrivers)
		assert.EqualValues(t, 80, usage.Usage.UsagePercentage)
		assert.Equal(t, 14, usage.Subscription.DaysRemaining)
		assert.Equal(t, subscription.StatusTrialing, usage.Subscription.Status)
	})

	t.Run("usage over the cap is not clamped", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 30}))
		usage, err := svc.UsageStats(ctx, "u1")
		require.NoError(t, err)
		assert.EqualValues(t, 120, usage.Usage.UsagePercentage)
	})

	t.Run("usage on unlimited plan", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, drivers("u1", driverCounts{active: 300}))
		_, err := svc.Subscribe(ctx, "u1", subscription.PlanEnterprise)
		require.NoError(t, err)

		usage, err := svc.UsageStats(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, usage.Usage.UsagePercentage)
		assert.Equal(t, 31, usage.Subscription.DaysRemaining)
	})

	t.Run("count failure", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t, &fakeDrivers{err: errors.New("db down")})
		_, err := svc.UsageStats(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrFailedToCountUsage)
	})
}

func TestService_Metrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	svc, _, _ := newService(t, drivers("u1", driverCounts{active: 25}),
		subscription.WithMetrics(subscription.NewMetrics(reg)))

	_, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.CheckDriverLimit(ctx, "u1")
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, values["fleetdesk_subscription_provisioned_total"])
	assert.Equal(t, 1.0, values["fleetdesk_entitlement_denials_total"])
}
