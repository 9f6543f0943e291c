// Package cache keeps owner-scoped list results in Redis using the
// cache-aside pattern. Writes invalidate every cached list of the owner.
//
// List keys carry the owner's generation. A write bumps the generation
// before deleting old lists, so a fill that read the store before the write
// lands under a retired key and is never served.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

type Stats struct {
	Hits    atomic.Uint64
	Misses  atomic.Uint64
	Sets    atomic.Uint64
	Deletes atomic.Uint64
	Errors  atomic.Uint64
}

type StatsSnapshot struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get decodes the cached value into dest. A miss is reported as (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.Misses.Add(1)
			return false, nil
		}
		c.stats.Errors.Add(1)
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.Errors.Add(1)
		return false, fmt.Errorf("cache unmarshal: %w", err)
	}

	c.stats.Hits.Add(1)
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.Errors.Add(1)
		return fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.stats.Errors.Add(1)
		return fmt.Errorf("cache set: %w", err)
	}

	c.stats.Sets.Add(1)
	return nil
}

// DeletePattern removes all keys matching a glob pattern.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+pattern, 100).Result()
		if err != nil {
			c.stats.Errors.Add(1)
			return fmt.Errorf("cache scan: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.stats.Errors.Add(1)
				return fmt.Errorf("cache delete: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.stats.Deletes.Add(uint64(deleted))
	return nil
}

// Generation returns the counter stored at key, 0 when it was never bumped.
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, c.prefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.stats.Errors.Add(1)
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Bump increments the counter at key and returns the new value.
func (c *Cache) Bump(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Incr(ctx, c.prefix+key).Result()
	if err != nil {
		c.stats.Errors.Add(1)
		return 0, fmt.Errorf("cache bump: %w", err)
	}
	return gen, nil
}

func (c *Cache) Stats() StatsSnapshot {
	hits, misses := c.stats.Hits.Load(), c.stats.Misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return StatsSnapshot{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.stats.Sets.Load(),
		Deletes: c.stats.Deletes.Load(),
		Errors:  c.stats.Errors.Load(),
		HitRate: rate,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// ListKey identifies one ordered list of an owner's collection at a generation.
func ListKey(collection, ownerID string, gen int64, o model.Order) string {
	return fmt.Sprintf("%s:%s:g%d:%s:%s", collection, ownerID, gen, o.Field, o.Direction())
}

// GenerationKey holds the owner's list generation. It lives outside
// OwnerPattern so invalidation never resets it.
func GenerationKey(collection, ownerID string) string {
	return fmt.Sprintf("gen:%s:%s", collection, ownerID)
}

// OwnerPattern matches every cached list of an owner's collection.
func OwnerPattern(collection, ownerID string) string {
	return fmt.Sprintf("%s:%s:*", collection, escape(ownerID))
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escape(s string) string {
	return globEscaper.Replace(s)
}
