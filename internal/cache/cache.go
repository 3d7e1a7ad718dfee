package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"kidchef/internal/model"
)

// Cache is a Redis-backed store of extraction results keyed by source
// URL, so repeated imports of the same page skip the network round
// trip. A nil *Cache is a no-op, which keeps call sites branch-free
// when caching is disabled.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "kidchef:recipe:" + hex.EncodeToString(sum[:])
}

// Get returns the cached recipe for a URL, or false on any miss or
// Redis error. Cache failures never fail an extraction.
func (c *Cache) Get(ctx context.Context, url string) (*model.ScrapedRecipe, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		return nil, false
	}
	var rec model.ScrapedRecipe
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// Put stores a recipe with the configured TTL, best-effort.
func (c *Cache) Put(ctx context.Context, url string, rec *model.ScrapedRecipe) {
	if c == nil || rec == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, cacheKey(url), raw, c.ttl).Err()
}
