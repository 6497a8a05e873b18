package main

import "time"

const (
	storeMongo  = "mongo"
	storeMemory = "memory"
)

type appConfig struct {
	Name string `env:"APP_NAME" envDefault:"fleetdesk"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	// CatalogPath points at a plan catalog YAML file. Empty uses the built-in catalog.
	CatalogPath string `env:"CATALOG_PATH"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	// StoreDriver is "mongo" or "memory". Memory keeps nothing across restarts.
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"mongo"`
	ReadyTimeout time.Duration `env:"HEALTH_READY_TIMEOUT" envDefault:"3s"`

	RateLimit rateLimitConfig
}

// rateLimitConfig applies to the billing mutation routes. Counters live in
// Redis when REDIS_URL is set and in process memory otherwise.
type rateLimitConfig struct {
	Requests      int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	SweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"5m"`
	RedisPrefix   string        `env:"RATE_LIMIT_REDIS_PREFIX" envDefault:"fleetdesk:ratelimit:"`
}
