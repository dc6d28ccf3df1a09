package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruEntry struct {
	value   []byte
	expires time.Time
}

// LRUCache is the in-process default when no Redis is configured.
type LRUCache struct {
	items *lru.Cache[string, lruEntry]
	now   func() time.Time
}

func NewLRU(size int) (*LRUCache, error) {
	if size <= 0 {
		size = 256
	}
	items, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{items: items, now: time.Now}, nil
}

func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.items.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := lruEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.items.Add(key, entry)
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.items.Remove(key)
	return nil
}
