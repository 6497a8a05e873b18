// Package redis connects the service to Redis with github.com/redis/go-redis/v9.
//
// Connect retries the initial ping according to Config, which is populated
// from REDIS_* environment variables. Redis is optional: when REDIS_URL is
// empty the server keeps rate-limit counters in memory instead.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		...
//	}
package redis
