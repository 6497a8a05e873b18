package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fleetdesk/pkg/mongo"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("context canceled between attempts", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		_, err := mongo.New(ctx, mongo.Config{
			ConnectionURL:  "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100",
			ConnectTimeout: 100 * time.Millisecond,
			MaxPoolSize:    1,
			RetryAttempts:  10,
			RetryInterval:  time.Second,
		})
		assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
	})

	t.Run("live server", func(t *testing.T) {
		t.Parallel()
		url := os.Getenv("MONGODB_URL")
		if url == "" {
			t.Skip("MONGODB_URL not set")
		}
		client, err := mongo.New(context.Background(), mongo.Config{
			ConnectionURL:  url,
			ConnectTimeout: 5 * time.Second,
			MaxPoolSize:    5,
			RetryAttempts:  1,
		})
		require.NoError(t, err)
		defer client.Disconnect(context.Background())

		assert.NoError(t, mongo.Healthcheck(client)(context.Background()))
	})
}
