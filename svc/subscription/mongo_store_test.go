package subscription_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mongox "github.com/dmitrymomot/fleetdesk/pkg/mongo"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

func newMongoStore(t *testing.T) *subscription.MongoStore {
	t.Helper()
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := mongox.NewWithDatabase(ctx, mongox.Config{
		ConnectionURL:  url,
		Database:       "fleetdesk_test_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	store := subscription.NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestMongoStore(t *testing.T) {
	t.Parallel()
	store := newMongoStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		_, err := store.Get(ctx, "u1")
		require.ErrorIs(t, err, subscription.ErrNoSubscription)

		sub := &subscription.Subscription{
			ID: uuid.NewString(), UserID: "u1", Plan: subscription.PlanStarter, Status: subscription.StatusTrialing,
			CurrentPeriodStart: now, CurrentPeriodEnd: now.AddDate(0, 0, 14), TrialEnd: &now, MaxDrivers: 25,
			Features: subscription.Features{MaxDrivers: 25}, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, store.Create(ctx, sub))

		got, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.WithinDuration(t, sub.CurrentPeriodEnd, got.CurrentPeriodEnd, time.Millisecond)

		got.CancelAtPeriodEnd = true
		require.NoError(t, store.Save(ctx, got))
		again, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, again.CancelAtPeriodEnd)
	})

	t.Run("unique user", func(t *testing.T) {
		t.Parallel()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Create(ctx, &subscription.Subscription{ID: uuid.NewString(), UserID: "u2"})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, subscription.ErrSubscriptionExists)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)
	})
}
