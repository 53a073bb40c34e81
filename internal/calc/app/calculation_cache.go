package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"gocalc/internal/calc/domain/entities"
	"gocalc/internal/calc/domain/operations"
	"gocalc/internal/calc/ports/cache"
	"gocalc/pkg/logger"
)

const (
	calculationKeyPrefix = "calc:calculation:"

	msgCacheReadFailed   = "calculation cache read failed"
	msgCacheWriteFailed  = "calculation cache write failed"
	msgCacheEvictFailed  = "calculation cache eviction failed"
	msgCacheDecodeFailed = "calculation cache entry is corrupted"
)

// cachedCalculation - представление вычисления в кэше.
type cachedCalculation struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Kind      string    `json:"type"`
	Result    float64   `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// calculationCache - типизированная обертка над строковым кэшем.
// Ошибки кэша только логируются: источником истины остается хранилище.
type calculationCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func calculationKey(id string) string {
	return calculationKeyPrefix + id
}

func (c *calculationCache) get(ctx context.Context, id string) *entities.Calculation {
	if c == nil || c.cache == nil {
		return nil
	}

	raw, ok, err := c.cache.Get(ctx, calculationKey(id))
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheReadFailed, zap.String("calculationID", id), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var cc cachedCalculation
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheDecodeFailed, zap.String("calculationID", id), zap.Error(err))
		c.evict(ctx, id)
		return nil
	}

	return &entities.Calculation{
		ID:        cc.ID,
		OwnerID:   cc.OwnerID,
		A:         cc.A,
		B:         cc.B,
		Kind:      operations.Kind(cc.Kind),
		Result:    cc.Result,
		CreatedAt: cc.CreatedAt,
		UpdatedAt: cc.UpdatedAt,
	}
}

func (c *calculationCache) put(ctx context.Context, calc *entities.Calculation) {
	if c == nil || c.cache == nil {
		return
	}

	payload, err := json.Marshal(cachedCalculation{
		ID:        calc.ID,
		OwnerID:   calc.OwnerID,
		A:         calc.A,
		B:         calc.B,
		Kind:      string(calc.Kind),
		Result:    calc.Result,
		CreatedAt: calc.CreatedAt,
		UpdatedAt: calc.UpdatedAt,
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheWriteFailed, zap.String("calculationID", calc.ID), zap.Error(err))
		return
	}

	if err := c.cache.Set(ctx, calculationKey(calc.ID), string(payload), c.ttl); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheWriteFailed, zap.String("calculationID", calc.ID), zap.Error(err))
	}
}

func (c *calculationCache) evict(ctx context.Context, ids ...string) {
	if c == nil || c.cache == nil || len(ids) == 0 {
		return
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = calculationKey(id)
	}

	if err := c.cache.Delete(ctx, keys...); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheEvictFailed, zap.Int("count", len(ids)), zap.Error(err))
	}
}
