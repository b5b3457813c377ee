package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache stores JSON payloads under a common prefix. All keys share one
// generation counter, so Invalidate drops every entry with a single INCR
// instead of a key scan. A nil client turns every call into a miss.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) generationKey() string { return c.prefix + ":gen" }

func (c *RedisCache) slot(ctx context.Context, name string) (string, bool) {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Result()
	if err == redis.Nil {
		gen = "0"
	} else if err != nil {
		return "", false
	}
	return c.prefix + ":" + gen + ":" + name, true
}

// GetJSON returns the generation-pinned slot for name, plus whether dest was
// filled from it. An empty slot means caching is off or Redis is unreachable.
func (c *RedisCache) GetJSON(ctx context.Context, name string, dest interface{}) (string, bool) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return "", false
	}
	slot, ok := c.slot(ctx, name)
	if !ok {
		return "", false
	}
	data, err := c.rdb.Get(ctx, slot).Bytes()
	if err != nil {
		return slot, false
	}
	return slot, json.Unmarshal(data, dest) == nil
}

// SetJSON writes v into a slot previously returned by GetJSON.
func (c *RedisCache) SetJSON(ctx context.Context, slot string, v interface{}) {
	if c == nil || c.rdb == nil || c.ttl <= 0 || slot == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, slot, data, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", slot).Msg("cache: set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		log.Warn().Err(err).Str("prefix", c.prefix).Msg("cache: invalidate failed")
	}
}
