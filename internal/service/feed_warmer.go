package service

import (
	"context"
	"time"

	"kupipodariday/internal/cache"
	"kupipodariday/internal/logger"
	"kupipodariday/internal/repository"
)

const defaultWarmInterval = 15 * time.Second

// FeedWarmerService periodically rebuilds the cached recent/popular feeds so
// readers rarely hit the database.
type FeedWarmerService struct {
	wishes repository.WishRepo
	feeds  *cache.VersionedFeedCache
	log    *logger.Logger
}

func NewFeedWarmerService(wishes repository.WishRepo, feeds cache.FeedCache, log *logger.Logger) *FeedWarmerService {
	return &FeedWarmerService{wishes: wishes, feeds: cache.NewVersioned(feeds), log: componentLogger(log, "feed_warmer")}
}

// Run refreshes once right away, then at the given interval until ctx is canceled.
func (s *FeedWarmerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		s.log.Warnw("feed_warm_interval_invalid", "tick", tick, "fallback", defaultWarmInterval)
		tick = defaultWarmInterval
	}
	s.refresh(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.refresh(ctx)
		}
	}
}

// refresh rebuilds every feed; a failing feed does not block the others.
func (s *FeedWarmerService) refresh(ctx context.Context) {
	for _, feed := range cache.Feeds {
		version := s.feeds.Version()
		wishes, err := loadFeed(ctx, s.wishes, feed)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warnw("feed_warm_load_failed", "feed", feed, "err", err)
			}
			continue
		}
		if _, err := s.feeds.SetIfCurrent(ctx, feed, wishes, version); err != nil {
			s.log.Warnw("feed_warm_store_failed", "feed", feed, "err", err)
		}
	}
}
