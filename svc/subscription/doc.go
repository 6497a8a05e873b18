// Package subscription manages the plan catalog, per-user subscription
// records and the entitlement checks that gate driver management.
//
// Every user has at most one Subscription. It is provisioned lazily as a
// starter trial the first time the user reaches an entitlement-gated route
// or asks for their subscription. The record keeps a snapshot of its plan's
// features, so catalog changes only reach users when they change plan.
//
// Wiring:
//
//	catalog, err := subscription.LoadCatalog(cfg.CatalogPath)
//	store := subscription.NewMongoStore(db)
//	svc := subscription.NewService(catalog, store, driver.NewCounter(drivers),
//		subscription.WithLogger(log),
//		subscription.WithMetrics(subscription.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	gate := subscription.NewGate(svc)
//
//	r.With(gate.RequireActiveSubscription, gate.CheckDriverLimit).Post("/drivers", create)
//	r.With(gate.RequireFeature(subscription.FeatureAdvancedAnalytics)).Get("/drivers/stats", stats)
package subscription
