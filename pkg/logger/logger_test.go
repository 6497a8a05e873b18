package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fleetdesk/pkg/logger"
)

type ctxKey struct{}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello", logger.Plan("starter"))

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "starter", entry["plan"])
	})

	t.Run("debug suppressed at info level", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("context extractor", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				v, ok := ctx.Value(ctxKey{}).(string)
				if !ok {
					return slog.Attr{}, false
				}
				return logger.RequestID(v), true
			}),
		)
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.With(logger.Component("billing")).InfoContext(ctx, "done")

		entry := decode(t, buf)
		assert.Equal(t, "req-1", entry["request_id"])
		assert.Equal(t, "billing", entry["component"])
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("development uses text and debug", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(logger.Development, "fleet"))
		log.Debug("trace")

		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "service=fleet")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production uses json", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(logger.Production, "fleet"))
		log.Info("ready")

		entry := decode(t, buf)
		assert.Equal(t, "production", entry["env"])
		assert.Equal(t, "fleet", entry["service"])
	})
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logger.Production, logger.ParseEnvironment("prod"))
	assert.Equal(t, logger.Staging, logger.ParseEnvironment("stage"))
	assert.Equal(t, logger.Development, logger.ParseEnvironment(""))
	assert.Equal(t, logger.Development, logger.ParseEnvironment("local"))
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))

	attr := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
}
