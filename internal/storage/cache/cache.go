// Package cache provides a Redis read-through cache in front of a pet.Registry.
// Opponent lookups hit the registry for every "find", so owner listings and
// single pets are cached as JSON for a bounded time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/config"
	"github.com/onegotchi/arena/internal/game/pet"
)

const keyPrefix = "arena:pets:"

// NewClient creates a Redis client for cfg. The connection is lazy; use Ping
// to verify reachability.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}

// PetCache wraps a pet.Registry with a Redis read-through cache.
// Redis failures degrade to direct registry reads.
type PetCache struct {
	next   pet.Registry
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ pet.Registry = (*PetCache)(nil)

// New wraps next with a cache backed by rdb.
//
// Precondition: ttl > 0.
func New(next pet.Registry, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *PetCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PetCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func ownerKey(owner string) string { return keyPrefix + "owner:" + pet.NormalizeOwner(owner) }
func idKey(id string) string       { return keyPrefix + "id:" + id }

// ListByOwner implements pet.Registry.
func (c *PetCache) ListByOwner(ctx context.Context, owner string) ([]pet.Pet, error) {
	key := ownerKey(owner)
	var pets []pet.Pet
	if c.load(ctx, key, &pets) {
		return pets, nil
	}
	pets, err := c.next.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, pets)
	return pets, nil
}

// Get implements pet.Registry. Misses are not cached.
func (c *PetCache) Get(ctx context.Context, id string) (pet.Pet, error) {
	key := idKey(id)
	var p pet.Pet
	if c.load(ctx, key, &p) {
		return p, nil
	}
	p, err := c.next.Get(ctx, id)
	if err != nil {
		return pet.Pet{}, err
	}
	c.store(ctx, key, p)
	return p, nil
}

// Create implements pet.Registry and invalidates the owner's listing.
func (c *PetCache) Create(ctx context.Context, p pet.Pet) (pet.Pet, error) {
	created, err := c.next.Create(ctx, p)
	if err != nil {
		return pet.Pet{}, err
	}
	c.Invalidate(ctx, created.Owner, created.ID)
	return created, nil
}

// Tend implements pet.Registry. The pet and its owner's listing are dropped
// from the cache so the next lookup sees the new stats.
func (c *PetCache) Tend(ctx context.Context, owner, id string, care pet.Care) (pet.Pet, error) {
	tended, err := c.next.Tend(ctx, owner, id, care)
	if err != nil {
		return pet.Pet{}, err
	}
	c.Invalidate(ctx, tended.Owner, tended.ID)
	return tended, nil
}

// Invalidate drops the cached listing of owner and the given pet IDs.
func (c *PetCache) Invalidate(ctx context.Context, owner string, ids ...string) {
	keys := []string{ownerKey(owner)}
	for _, id := range ids {
		keys = append(keys, idKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("invalidating pet cache", zap.String("owner", owner), zap.Error(err))
	}
}

func (c *PetCache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("reading pet cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("decoding cached pets", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *PetCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("encoding pets for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("writing pet cache", zap.String("key", key), zap.Error(err))
	}
}

// Ping verifies that Redis answers.
func Ping(ctx context.Context, rdb redis.Cmdable) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}
