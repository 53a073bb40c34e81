package logger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gocalc/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "INFO", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/"+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}

	t.Run("with returns a new instance", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "info")
		require.NoError(t, err)

		child := log.With(zap.String("component", "test"))
		assert.NotSame(t, log, child)
	})

	t.Run("logging methods accept request context", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewRequestIDContext(context.Background(), "req-1")
		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug")
			log.Info(ctx, "info", zap.Int("n", 1))
			log.Warn(ctx, "warn")
			log.Error(ctx, "error")
		})
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), log)
		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, log, got)
		assert.Same(t, log, logger.Log(ctx))
	})

	t.Run("missing logger", func(t *testing.T) {
		_, err := logger.FromContext(context.Background())
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck
		_, err := logger.FromContext(nil)
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestLogFallbackChain(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	fallback := logger.Log(context.Background())
	require.NotNil(t, fallback)
	assert.Same(t, fallback, logger.Log(context.Background()))

	global, err := logger.NewLogger(logger.Production, "error")
	require.NoError(t, err)
	logger.SetGlobalLogger(global)
	assert.Same(t, global, logger.Log(context.Background()))

	local, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	ctx := logger.NewContext(context.Background(), local)
	assert.Same(t, local, logger.Log(ctx))
}

func TestInitGlobalLoggerIsIdempotent(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	require.NoError(t, logger.InitGlobalLogger(logger.Development))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Production, "debug"))
	assert.Same(t, first, logger.Log(context.Background()))
}

func TestRequestID(t *testing.T) {
	t.Run("generated ids are unique uuids", func(t *testing.T) {
		a := logger.GenerateRequestID()
		b := logger.GenerateRequestID()
		assert.NotEqual(t, a, b)

		_, err := uuid.Parse(a)
		require.NoError(t, err)
	})

	t.Run("stores provided id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "abc")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("empty id is generated", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.NotEmpty(t, id)
	})

	t.Run("absent id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})
}

func TestWithRequestID(t *testing.T) {
	log, err := logger.NewLogger(logger.Development, "info")
	require.NoError(t, err)

	assert.Same(t, log, log.WithRequestID(context.Background()))

	ctx := logger.NewRequestIDContext(context.Background(), "req-2")
	assert.NotSame(t, log, log.WithRequestID(ctx))
}
