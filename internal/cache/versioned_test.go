package cache

import (
	"context"
	"testing"
	"time"

	"kupipodariday/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionedFeedCache_SkipsSnapshotLoadedBeforeInvalidate(t *testing.T) {
	redisCache, _ := newTestCache(t, time.Minute)
	c := NewVersioned(redisCache)
	ctx := context.Background()

	v := c.Version()
	stale := []models.Wish{{ID: 1, Name: "Bike"}}

	// a write lands while the reader is still loading
	require.NoError(t, c.Invalidate(ctx))

	stored, err := c.SetIfCurrent(ctx, FeedRecent, stale, v)
	require.NoError(t, err)
	assert.False(t, stored)
	_, err = c.Get(ctx, FeedRecent)
	assert.ErrorIs(t, err, ErrMiss)

	stored, err = c.SetIfCurrent(ctx, FeedRecent, stale, c.Version())
	require.NoError(t, err)
	assert.True(t, stored)
	got, err := c.Get(ctx, FeedRecent)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewVersioned_SharesCounter(t *testing.T) {
	c := NewVersioned(NopFeedCache{})
	assert.Same(t, c, NewVersioned(c))

	v := c.Version()
	require.NoError(t, NewVersioned(c).Invalidate(context.Background()))
	assert.Equal(t, v+1, c.Version())
}

func TestNewVersioned_NilFallsBackToNop(t *testing.T) {
	c := NewVersioned(nil)
	_, err := c.Get(context.Background(), FeedPopular)
	assert.ErrorIs(t, err, ErrMiss)
}
