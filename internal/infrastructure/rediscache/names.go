// Package rediscache caches requester display names in Redis so digests do
// not hit the Telegram API for every pending ride.
package rediscache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shuttle:name:"

// KV is the subset of Redis the cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ErrMiss is returned by KV.Get for absent keys.
var ErrMiss = errors.New("cache miss")

type redisAdapter struct{ c *redis.Client }

func NewRedisKV(addr, password string) (KV, *redis.Client) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &redisAdapter{c: c}, c
}

func (r *redisAdapter) Get(ctx context.Context, key string) (string, error) {
	v, err := r.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *redisAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// NameCache wraps a resolver. Redis errors are logged and bypassed.
type NameCache struct {
	kv     KV
	next   domain.NameResolver
	ttl    time.Duration
	logger *slog.Logger
}

func NewNameCache(kv KV, next domain.NameResolver, ttl time.Duration, logger *slog.Logger) *NameCache {
	return &NameCache{kv: kv, next: next, ttl: ttl, logger: logger}
}

func (c *NameCache) DisplayName(ctx context.Context, requesterID string) (string, error) {
	key := keyPrefix + requesterID
	name, err := c.kv.Get(ctx, key)
	if err == nil && name != "" {
		return name, nil
	}
	if err != nil && !errors.Is(err, ErrMiss) {
		c.logger.Warn("name cache get failed", "requester_id", requesterID, "error", err)
	}

	name, err = c.next.DisplayName(ctx, requesterID)
	if err != nil {
		return "", err
	}
	if err := c.kv.Set(ctx, key, name, c.ttl); err != nil {
		c.logger.Warn("name cache set failed", "requester_id", requesterID, "error", err)
	}
	return name, nil
}
