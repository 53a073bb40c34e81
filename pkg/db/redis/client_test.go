package redis_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/pkg/db/redis"
)

func configFor(t *testing.T, mr *miniredis.Miniredis) *redis.Config {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = mr.Host()
	cfg.Port = port
	return cfg
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewClient(context.Background(), configFor(t, mr))
	require.NoError(t, err)

	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.RawClient().Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
	require.NoError(t, client.Close())
}

func TestNewClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := configFor(t, mr)
	mr.Close()

	cfg.ConnectTimeout = 200 * time.Millisecond
	client, err := redis.NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestPingAfterServerStops(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := redis.NewClient(context.Background(), configFor(t, mr))
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
