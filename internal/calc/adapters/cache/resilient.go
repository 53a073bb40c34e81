package cache

import (
	"context"
	"time"

	"gocalc/internal/calc/ports/cache"
	"gocalc/internal/resilience"
)

type lookup struct {
	value string
	found bool
}

// ResilientCache оборачивает кэш политикой повторов и предохранителем.
// При открытом предохранителе вызовы сразу завершаются resilience.ErrCircuitOpen.
type ResilientCache struct {
	next   cache.Cache
	policy *resilience.Policy
}

// NewResilientCache создает обертку с заданной политикой.
func NewResilientCache(next cache.Cache, policy *resilience.Policy) cache.Cache {
	return &ResilientCache{next: next, policy: policy}
}

// Get читает значение через политику.
func (c *ResilientCache) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := resilience.Do(ctx, c.policy, LogMethodGet, func(ctx context.Context) (lookup, error) {
		value, found, err := c.next.Get(ctx, key)
		return lookup{value: value, found: found}, err
	})
	return res.value, res.found, err
}

// Set записывает значение через политику.
func (c *ResilientCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.policy.Execute(ctx, LogMethodSet, func(ctx context.Context) error {
		return c.next.Set(ctx, key, value, ttl)
	})
}

// Delete удаляет ключи через политику.
func (c *ResilientCache) Delete(ctx context.Context, keys ...string) error {
	return c.policy.Execute(ctx, LogMethodDelete, func(ctx context.Context) error {
		return c.next.Delete(ctx, keys...)
	})
}

// Ping проверяет кэш напрямую, минуя предохранитель.
func (c *ResilientCache) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Close закрывает вложенный кэш.
func (c *ResilientCache) Close() error {
	return c.next.Close()
}
