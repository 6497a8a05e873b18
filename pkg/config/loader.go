package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// registry keeps one parsed copy of every configuration type.
type registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]any
}

var (
	cache = &registry{entries: make(map[reflect.Type]any)}

	dotenvOnce sync.Once
)

// Load populates v from the process environment. A `.env` file in the working
// directory is read once per process, if present.
//
// Every configuration type is parsed only once. Later calls for the same type
// receive the cached copy, so callers across packages see identical values.
//
//	type AppConfig struct {
//		Env       string `env:"APP_ENV" envDefault:"development"`
//		JWTSecret string `env:"JWT_SECRET,required"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// A missing .env is the normal case outside local development.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cached, ok := cache.entries[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache.entries[key] = parsed
	*v = parsed

	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reset drops every cached configuration. Tests use it after changing the
// environment.
func Reset() {
	cache.mu.Lock()
	cache.entries = make(map[reflect.Type]any)
	cache.mu.Unlock()
}
