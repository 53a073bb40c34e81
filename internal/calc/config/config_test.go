package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/internal/calc/config"
	"gocalc/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.GetAddress())
	assert.Equal(t, "0.0.0.0:50051", cfg.GRPC.GetAddress())
	assert.Equal(t, 15*time.Minute, cfg.JWT.GetAccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.JWT.GetRefreshTokenTTL())
	assert.Equal(t, 5*time.Second, cfg.Shutdown.GetTimeout())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, logger.Development, cfg.Logging.GetEnvironment())
}

func TestLoadFromEnvironment(t *testing.T) {
	env := map[string]string{
		"CALC_POSTGRES_HOST":             "db",
		"CALC_POSTGRES_PORT":             "5555",
		"CALC_POSTGRES_USER":             "u",
		"CALC_POSTGRES_PASSWORD":         "p",
		"CALC_POSTGRES_DB":               "calcdb",
		"CALC_STORAGE_DRIVER":            "sqlite",
		"CALC_HTTP_PORT":                 "9090",
		"CALC_KAFKA_ENABLED":             "true",
		"CALC_KAFKA_BROKERS":             "k1:9092, k2:9092,",
		"CALC_LOGGER_MODE":               "production",
		"CALC_GRACEFUL_SHUTDOWN_TIMEOUT": "10",
		"CALC_JWT_ACCESS_TOKEN_TTL":      "bogus",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5555 user=u password=p dbname=calcdb sslmode=disable", cfg.Postgres.GetDSN())
	assert.Equal(t, "postgres://u:p@db:5555/calcdb?sslmode=disable", cfg.Postgres.GetConnectionURL())
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.GetBrokers())
	assert.Equal(t, logger.Production, cfg.Logging.GetEnvironment())
	assert.Equal(t, 10*time.Second, cfg.Shutdown.GetTimeout())
	assert.Equal(t, 15*time.Minute, cfg.JWT.GetAccessTokenTTL())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CALC_STORAGE_DRIVER", "mongo")

	_, err := config.Load(context.Background(), "")
	require.ErrorIs(t, err, config.ErrUnknownStorageDriver)
}

func TestLoadRejectsEmptySecret(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverPostgres}}
	require.ErrorIs(t, cfg.Validate(), config.ErrEmptyJWTSecret)
}

func TestRedisClientConfig(t *testing.T) {
	rc := config.RedisConfig{Host: "cache", Port: 6380, PoolSize: 4}
	cc := rc.ClientConfig()
	assert.Equal(t, "cache:6380", cc.Address())
	assert.Equal(t, 4, cc.PoolSize)
}
