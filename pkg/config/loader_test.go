package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fleetdesk/pkg/config"
)

type catalogConfig struct {
	Path     string `env:"FLEET_TEST_CATALOG_PATH" envDefault:"plans.yaml"`
	Attempts int    `env:"FLEET_TEST_ATTEMPTS" envDefault:"3"`
	Strict   bool   `env:"FLEET_TEST_STRICT" envDefault:"true"`
}

type overriddenConfig struct {
	Name  string `env:"FLEET_TEST_NAME"`
	Limit int    `env:"FLEET_TEST_LIMIT"`
}

type requiredConfig struct {
	Secret string `env:"FLEET_TEST_REQUIRED_SECRET,required"`
}

type cachedConfig struct {
	Value string `env:"FLEET_TEST_CACHED"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg catalogConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "plans.yaml", cfg.Path)
		assert.Equal(t, 3, cfg.Attempts)
		assert.True(t, cfg.Strict)
	})

	t.Run("environment values", func(t *testing.T) {
		t.Setenv("FLEET_TEST_NAME", "fleet")
		t.Setenv("FLEET_TEST_LIMIT", "25")

		var cfg overriddenConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "fleet", cfg.Name)
		assert.Equal(t, 25, cfg.Limit)
	})

	t.Run("missing required value", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)

		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *catalogConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestLoad_Cached(t *testing.T) {
	t.Setenv("FLEET_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("FLEET_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value, "cached value must be reused")

	config.Reset()

	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
