package cache

import (
	"context"
	"encoding/json"
	"time"
)

// KV is the minimal key-value surface MetadataCache needs. Production
// wiring uses RedisKV; tests substitute an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"storedAt"`
}

// MetadataCache is a write-through cache for public meme metadata.
// Staleness is checked against a fixed TTL using the injected clock, so
// the expiry rule is testable independent of the backing store's own TTL
// (which is kept only as a backstop eviction).
type MetadataCache struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

func NewMetadataCache(kv KV, ttl time.Duration) *MetadataCache {
	return &MetadataCache{kv: kv, ttl: ttl, now: time.Now}
}

// WithClock overrides the cache's clock. Test hook.
func (c *MetadataCache) WithClock(now func() time.Time) *MetadataCache {
	c.now = now
	return c
}

func (c *MetadataCache) key(memeID string) string {
	return "meta:" + memeID
}

// Get unmarshals the cached value into dst and reports whether a fresh
// entry was found. Stale entries are evicted on read.
func (c *MetadataCache) Get(ctx context.Context, memeID string, dst any) (bool, error) {
	raw, ok, err := c.kv.Get(ctx, c.key(memeID))
	if err != nil || !ok {
		return false, err
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		_ = c.kv.Del(ctx, c.key(memeID))
		return false, nil
	}

	if c.now().Sub(e.StoredAt) > c.ttl {
		_ = c.kv.Del(ctx, c.key(memeID))
		return false, nil
	}

	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MetadataCache) Put(ctx context.Context, memeID string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entry{Payload: payload, StoredAt: c.now()})
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, c.key(memeID), string(raw), 2*c.ttl)
}

func (c *MetadataCache) Invalidate(ctx context.Context, memeID string) error {
	return c.kv.Del(ctx, c.key(memeID))
}
