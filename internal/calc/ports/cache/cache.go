// Package cache определяет порт кэша.
package cache

import (
	"context"
	"time"
)

// Cache - строковое хранилище ключ-значение.
// Get возвращает пустую строку и false при отсутствии ключа.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error

	Close() error
}
