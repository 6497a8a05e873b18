package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/fleetdesk/pkg/config"
	"github.com/dmitrymomot/fleetdesk/pkg/httpserver"
	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/pkg/mongo"
	"github.com/dmitrymomot/fleetdesk/pkg/ratelimit"
	"github.com/dmitrymomot/fleetdesk/pkg/redis"
	"github.com/dmitrymomot/fleetdesk/svc/driver"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

var errUnknownStoreDriver = errors.New("unknown STORE_DRIVER")

// storage holds the persistence backends chosen by configuration.
type storage struct {
	subscriptions subscription.Store
	drivers       driver.Repository
	counters      ratelimit.Store
	checks        []httpserver.Check
	closers       []func(context.Context) error
}

// Close releases backends in reverse order of opening.
func (st *storage) Close(ctx context.Context) error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		errs = append(errs, st.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func openStorage(ctx context.Context, cfg appConfig, log *slog.Logger) (*storage, error) {
	st := &storage{}

	switch cfg.StoreDriver {
	case storeMemory:
		log.Warn("using in-memory stores, data is lost on restart")
		st.subscriptions = subscription.NewMemoryStore()
		st.drivers = driver.NewMemoryRepository()
	case storeMongo:
		if err := st.openMongo(ctx); err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStoreDriver, cfg.StoreDriver)
	}

	if err := st.openCounters(ctx, cfg.RateLimit, log); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return st, nil
}

func (st *storage) openMongo(ctx context.Context) error {
	var cfg mongo.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	client, err := mongo.New(ctx, cfg)
	if err != nil {
		return err
	}
	st.closers = append(st.closers, client.Disconnect)
	st.checks = append(st.checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})

	db := client.Database(cfg.Database)
	subs := subscription.NewMongoStore(db)
	drivers := driver.NewMongoRepository(db)
	if err := subs.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := drivers.EnsureIndexes(ctx); err != nil {
		return err
	}
	st.subscriptions = subs
	st.drivers = drivers
	return nil
}

func (st *storage) openCounters(ctx context.Context, cfg rateLimitConfig, log *slog.Logger) error {
	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return err
	}
	if !rcfg.Enabled() {
		mem := ratelimit.NewMemoryStore()
		sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		go mem.RunSweeper(sweepCtx, cfg.SweepInterval)
		st.closers = append(st.closers, func(context.Context) error {
			cancel()
			return nil
		})
		st.counters = mem
		log.Info("rate limit counters kept in memory")
		return nil
	}

	client, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return err
	}
	st.closers = append(st.closers, func(context.Context) error { return client.Close() })
	st.checks = append(st.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	st.counters = ratelimit.NewRedisStore(client, cfg.RedisPrefix)
	log.Info("rate limit counters kept in redis", logger.Component("ratelimit"))
	return nil
}
