package cache

import (
	"context"
	"sync"

	"kupipodariday/internal/models"
)

// VersionedFeedCache counts invalidations made through it so a reader can
// store a snapshot only if no write landed while it was loading.
// Invalidations from other processes are not seen; the TTL bounds those.
type VersionedFeedCache struct {
	FeedCache

	mu      sync.Mutex
	version uint64
}

// NewVersioned wraps c. Wrapping an already versioned cache returns it as is,
// so every service built on it shares one counter.
func NewVersioned(c FeedCache) *VersionedFeedCache {
	if v, ok := c.(*VersionedFeedCache); ok {
		return v
	}
	if c == nil {
		c = NopFeedCache{}
	}
	return &VersionedFeedCache{FeedCache: c}
}

// Version is read before loading a snapshot and handed back to SetIfCurrent.
func (c *VersionedFeedCache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SetIfCurrent stores wishes unless an invalidation happened after version was
// read. It reports whether the snapshot was stored.
func (c *VersionedFeedCache) SetIfCurrent(ctx context.Context, feed Feed, wishes []models.Wish, version uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false, nil
	}
	if err := c.FeedCache.Set(ctx, feed, wishes); err != nil {
		return false, err
	}
	return true, nil
}

func (c *VersionedFeedCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return c.FeedCache.Invalidate(ctx)
}
