package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// tombstone marks a key as invalidated. It is not valid JSON, so it can never
// collide with a cached value.
var tombstone = []byte("\x00invalidated")

// ViewCache stores JSON encoded values of type T in Redis.
//
// Reads fill the cache with SET NX, and writers invalidate by overwriting the
// key with a tombstone that lives for one TTL. A fill racing an invalidation
// therefore cannot bring back the old value: either the tombstone overwrites
// it, or the fill finds the tombstone and does nothing.
type ViewCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewViewCache[T any](client *redis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached value. Errors, tombstones and corrupt entries are
// misses.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Cache read failed",
				zap.String("key", c.prefix+key),
				zap.Error(err),
			)
		}
		return nil, false
	}
	if bytes.Equal(data, tombstone) {
		return nil, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Log.Warn("Cache entry is corrupt, ignoring",
			zap.String("key", c.prefix+key),
			zap.Error(err),
		)
		return nil, false
	}
	return &v, true
}

// Fill stores value only if the key is absent. A failed fill is logged and
// otherwise ignored: the next read goes to the database again.
func (c *ViewCache[T]) Fill(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Log.Error("Cache marshal failed",
			zap.String("key", c.prefix+key),
			zap.Error(err),
		)
		return
	}
	if err := c.client.SetNX(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		logger.Log.Warn("Cache fill failed",
			zap.String("key", c.prefix+key),
			zap.Error(err),
		)
	}
}

// Invalidate replaces the key with a tombstone. Callers must treat an error
// as fatal for the write they are guarding.
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) error {
	return c.client.Set(ctx, c.prefix+key, tombstone, c.ttl).Err()
}
