// Package cache keeps short-lived snapshots of the public wish feeds in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kupipodariday/internal/models"

	"github.com/redis/go-redis/v9"
)

// Feed names a cached wish snapshot.
type Feed string

const (
	FeedRecent  Feed = "recent"
	FeedPopular Feed = "popular"
)

// Feeds lists every cached snapshot.
var Feeds = []Feed{FeedRecent, FeedPopular}

// ErrMiss is returned by Get when the snapshot is absent or expired.
var ErrMiss = errors.New("feed cache miss")

type FeedCache interface {
	Get(ctx context.Context, feed Feed) ([]models.Wish, error)
	Set(ctx context.Context, feed Feed, wishes []models.Wish) error
	Invalidate(ctx context.Context) error
}

// RedisFeedCache stores each feed as one JSON value with a TTL.
type RedisFeedCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisFeedCache(client redis.UniversalClient, ttl time.Duration) *RedisFeedCache {
	return &RedisFeedCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings the server so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisFeedCache) key(feed Feed) string { return fmt.Sprintf("wishes:feed:%s", feed) }

func (c *RedisFeedCache) Get(ctx context.Context, feed Feed) ([]models.Wish, error) {
	b, err := c.client.Get(ctx, c.key(feed)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get feed %s: %w", feed, err)
	}
	var wishes []models.Wish
	if err := json.Unmarshal(b, &wishes); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", feed, err)
	}
	return wishes, nil
}

func (c *RedisFeedCache) Set(ctx context.Context, feed Feed, wishes []models.Wish) error {
	if wishes == nil {
		wishes = []models.Wish{}
	}
	b, err := json.Marshal(wishes)
	if err != nil {
		return fmt.Errorf("encode feed %s: %w", feed, err)
	}
	if err := c.client.Set(ctx, c.key(feed), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set feed %s: %w", feed, err)
	}
	return nil
}

// Invalidate drops every feed snapshot.
func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(Feeds))
	for _, f := range Feeds {
		keys = append(keys, c.key(f))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate feeds: %w", err)
	}
	return nil
}

// NopFeedCache always misses; used when Redis is not configured.
type NopFeedCache struct{}

func (NopFeedCache) Get(context.Context, Feed) ([]models.Wish, error) { return nil, ErrMiss }
func (NopFeedCache) Set(context.Context, Feed, []models.Wish) error   { return nil }
func (NopFeedCache) Invalidate(context.Context) error                 { return nil }
