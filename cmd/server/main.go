// Command server runs the fleetdesk subscription and driver API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/fleetdesk/pkg/clientip"
	"github.com/dmitrymomot/fleetdesk/pkg/config"
	"github.com/dmitrymomot/fleetdesk/pkg/httpserver"
	"github.com/dmitrymomot/fleetdesk/pkg/jwt"
	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/pkg/ratelimit"
	"github.com/dmitrymomot/fleetdesk/pkg/requestid"
	"github.com/dmitrymomot/fleetdesk/svc/driver"
	"github.com/dmitrymomot/fleetdesk/svc/subscription"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), cfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)

	catalog, err := subscription.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	tokens, err := jwt.New(cfg.JWTSecret)
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(context.WithoutCancel(ctx)); cerr != nil {
			log.Error("failed to close storage", logger.Error(cerr))
		}
	}()

	limiter, err := ratelimit.NewFixedWindow(st.counters, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	if err != nil {
		return err
	}

	a := &app{
		log:    log,
		tokens: tokens,
		subscriptions: subscription.NewService(catalog, st.subscriptions, driver.NewCounter(st.drivers),
			subscription.WithLogger(log),
			subscription.WithMetrics(subscription.NewMetrics(prometheus.DefaultRegisterer)),
		),
		drivers:      driver.NewService(st.drivers, driver.WithLogger(log)),
		limiter:      limiter,
		gatherer:     prometheus.DefaultGatherer,
		checks:       st.checks,
		readyTimeout: cfg.ReadyTimeout,
	}

	return httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, a.routes())
}
