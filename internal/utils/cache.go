package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache is a JSON read-through cache on Redis. A nil *Cache, or one built
// without a client, is valid and never hits.
type Cache struct {
	rdb *redis.Client // Redis client, nil disables the cache
}

// NewCache wraps a Redis client; rdb may be nil
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled reports whether a Redis client backs the cache
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err // Corrupt entry counts as a miss
	}
	return true, nil
}

// Generation reads a counter bumped by Invalidate; an unset counter is 0
func (c *Cache) Generation(ctx context.Context, genKey string) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration stores value only while genKey still reads gen. It
// reports false when an Invalidate happened since gen was read, so a
// value loaded before a write is never cached after it.
func (c *Cache) SetIfGeneration(ctx context.Context, genKey string, gen int64, key string, value any, ttl time.Duration) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err
	}
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != gen {
			return nil // Invalidated while loading
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl) // Only applied if genKey is untouched
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil // Invalidate raced the write
	}
	return stored, err
}

// Invalidate bumps genKey and removes keys in one transaction
func (c *Cache) Invalidate(ctx context.Context, genKey string, keys ...string) error {
	if !c.Enabled() {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey) // Outstanding SetIfGeneration calls now fail
		if len(keys) > 0 {
			pipe.Del(ctx, keys...) // Drop cached values
		}
		return nil
	})
	return err
}
