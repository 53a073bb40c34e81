package cache_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/internal/calc/adapters/cache"
	"gocalc/internal/resilience"
	redisdb "gocalc/pkg/db/redis"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	host, portStr, _ := strings.Cut(s.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redisdb.DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	client, err := redisdb.NewClient(context.Background(), cfg)
	require.NoError(t, err)

	c, ok := cache.NewRedisCache(client, ttl).(*cache.RedisCache)
	require.True(t, ok)
	t.Cleanup(func() { _ = c.Close() })
	return s, c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, c := newRedisCache(t, 10*time.Minute)

	_, found, err := c.Get(ctx, "calc:calculation:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "calc:calculation:1", `{"id":"1"}`, 0))
	ttl := s.TTL("calc:calculation:1")
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)

	value, found, err := c.Get(ctx, "calc:calculation:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"1"}`, value)

	require.NoError(t, c.Set(ctx, "calc:calculation:2", "x", time.Minute))
	require.NoError(t, c.Delete(ctx, "calc:calculation:1", "calc:calculation:2"))
	assert.False(t, s.Exists("calc:calculation:1"))
	assert.False(t, s.Exists("calc:calculation:2"))

	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Ping(ctx))
}

func TestRedisCacheServerFailure(t *testing.T) {
	ctx := context.Background()
	s, c := newRedisCache(t, time.Minute)

	s.SetError("ERR server unavailable")
	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), cache.ErrorFailedToGet)

	err = c.Set(ctx, "k", "v", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), cache.ErrorFailedToSet)
}

type flakyCache struct {
	failures int
	calls    int
}

var errUnavailable = errors.New("cache unavailable")

func (f *flakyCache) Get(context.Context, string) (string, bool, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", false, errUnavailable
	}
	return "v", true, nil
}

func (f *flakyCache) Set(context.Context, string, string, time.Duration) error {
	f.calls++
	return errUnavailable
}

func (f *flakyCache) Delete(context.Context, ...string) error { return nil }
func (f *flakyCache) Ping(context.Context) error              { return nil }
func (f *flakyCache) Close() error                            { return nil }

func testPolicy() *resilience.Policy {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 2
	retry.InitialBackoff = time.Millisecond
	retry.MaxBackoff = time.Millisecond
	return resilience.NewPolicyWithConfig("cache", resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          time.Hour,
		SuccessThreshold: 1,
	}, retry)
}

func TestResilientCacheRetriesThenSucceeds(t *testing.T) {
	next := &flakyCache{failures: 1}
	c := cache.NewResilientCache(next, testPolicy())

	value, found, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
	assert.Equal(t, 2, next.calls)
}

func TestResilientCacheOpensCircuit(t *testing.T) {
	ctx := context.Background()
	next := &flakyCache{}
	c := cache.NewResilientCache(next, testPolicy())

	require.ErrorIs(t, c.Set(ctx, "k", "v", 0), errUnavailable)
	calls := next.calls

	require.ErrorIs(t, c.Set(ctx, "k", "v", 0), resilience.ErrCircuitOpen)
	assert.Equal(t, calls, next.calls, "open circuit short-circuits the call")

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Close())
}
