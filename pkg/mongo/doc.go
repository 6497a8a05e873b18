// Package mongo opens MongoDB connections with go.mongodb.org/mongo-driver/v2.
//
// Config is read from MONGODB_* environment variables. New retries the
// initial connection and ping, which smooths over slow container start-up and
// replica set elections. Healthcheck plugs into the HTTP readiness probe.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.NewWithDatabase(ctx, cfg)
package mongo
