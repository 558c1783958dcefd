package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "upstream:version"

// Cache stores raw aggregator replies in Redis keyed by request parameters.
// Detail entries expire; search entries live until the version is bumped,
// giving process-lifetime semantics under last-write-wins. Staleness is
// acceptable here, so no coherency machinery exists around it.
type Cache struct {
	client    *redis.Client
	detailTTL time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to
// pass-through loading.
func NewCache(client *redis.Client, detailTTL time.Duration) *Cache {
	if detailTTL <= 0 {
		detailTTL = 48 * time.Hour
	}
	return &Cache{client: client, detailTTL: detailTTL}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// SearchKey composes the versioned cache key for a search request.
func (c *Cache) SearchKey(ctx context.Context, keywords string, page, pageSize, sortType int) (string, error) {
	parts := []string{"upstream", "search", keywords, strconv.Itoa(page), strconv.Itoa(pageSize), strconv.Itoa(sortType)}
	return c.buildKey(ctx, parts)
}

// DetailKey composes the cache key for an item detail request. Detail
// entries carry their own TTL and survive version bumps, so the key is not
// versioned.
func (c *Cache) DetailKey(ctx context.Context, itemID string) (string, error) {
	return strings.Join([]string{"upstream", "detail", itemID}, ":"), nil
}

func (c *Cache) buildKey(ctx context.Context, parts []string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchJSON loads a cached value or populates it using the loader. A zero
// ttl stores the entry without expiry.
func (c *Cache) FetchJSON(ctx context.Context, key string, ttl time.Duration, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("upstream: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// DetailTTL exposes the configured expiry for detail entries.
func (c *Cache) DetailTTL() time.Duration {
	if c == nil {
		return 48 * time.Hour
	}
	return c.detailTTL
}

// Bump invalidates all cached replies by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
