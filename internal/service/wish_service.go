package service

import (
	"context"
	"errors"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/cache"
	"kupipodariday/internal/logger"
	"kupipodariday/internal/metrics"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"

	"github.com/shopspring/decimal"
)

type WishService struct {
	wishes    repository.WishRepo
	users     repository.UserRepo
	offers    repository.OfferRepo
	wishlists repository.WishlistRepo
	feeds     *cache.VersionedFeedCache
	log       *logger.Logger
}

func NewWishService(
	wishes repository.WishRepo,
	users repository.UserRepo,
	offers repository.OfferRepo,
	wishlists repository.WishlistRepo,
	feeds cache.FeedCache,
	log *logger.Logger,
) *WishService {
	return &WishService{
		wishes:    wishes,
		users:     users,
		offers:    offers,
		wishlists: wishlists,
		feeds:     cache.NewVersioned(feeds),
		log:       componentLogger(log, "wishes"),
	}
}

// Create validates money fields and wishlist ownership, then stores the wish.
func (s *WishService) Create(ctx context.Context, ownerID int64, in CreateWishInput) (*models.Wish, error) {
	if _, err := resolveCaller(ctx, s.users, ownerID); err != nil {
		return nil, err
	}

	price := models.Money(in.Price)
	if err := checkAmount("price", price); err != nil {
		return nil, err
	}
	raised := decimal.Zero
	if in.Raised != nil {
		raised = models.Money(*in.Raised)
		if raised.IsNegative() {
			return nil, apperr.Validation("raised", "must not be negative")
		}
		if models.ExceedsMax(raised) {
			return nil, tooLarge("raised")
		}
		if raised.GreaterThan(price) {
			return nil, apperr.ErrWishRaisedAbovePrice
		}
	}

	listIDs := uniqueIDs(in.WishlistIDs)
	for _, listID := range listIDs {
		wl, err := s.wishlists.GetByID(ctx, listID)
		if err != nil {
			return nil, apperr.Internal(err, "load wishlist")
		}
		if wl == nil {
			return nil, apperr.ErrWishlistNotFound
		}
		if wl.OwnerID != ownerID {
			return nil, apperr.ErrUpdateOtherWishlist
		}
	}

	w := &models.Wish{
		Name:        in.Name,
		Link:        in.Link,
		Image:       in.Image,
		Description: in.Description,
		Price:       price,
		Raised:      raised,
		OwnerID:     ownerID,
	}
	if _, err := s.wishes.Create(ctx, w, listIDs); err != nil {
		return nil, apperr.Internal(err, "create wish")
	}
	s.invalidateFeeds(ctx)
	return w, nil
}

// Read returns the wish with its owner and offers as seen by viewerID.
func (s *WishService) Read(ctx context.Context, viewerID, id int64) (*models.WishView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := models.Owner{ID: w.OwnerID}
	u, err := s.users.GetByID(ctx, w.OwnerID)
	if err != nil {
		return nil, apperr.Internal(err, "load wish owner")
	}
	if u != nil {
		owner.Username, owner.Avatar = u.Username, u.Avatar
	}

	offers, err := s.offers.ListByWish(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load offers")
	}
	return &models.WishView{
		Wish:   *w,
		Owner:  owner,
		Offers: ProjectOffers(viewerID, offers),
	}, nil
}

// Update edits the owner's wish. The price is frozen once money was raised.
func (s *WishService) Update(ctx context.Context, requesterID, id int64, in UpdateWishInput) (*models.Wish, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != requesterID {
		return nil, apperr.ErrUpdateOtherWish
	}

	patch := models.WishPatch{
		Name:        in.Name,
		Link:        in.Link,
		Image:       in.Image,
		Description: in.Description,
	}
	requireUnfunded := false
	if in.Price != nil {
		price := models.Money(*in.Price)
		if err := checkAmount("price", price); err != nil {
			return nil, err
		}
		if !price.Equal(w.Price) {
			if w.Funded() {
				return nil, apperr.ErrUpdateWishPrice
			}
			patch.Price = &price
			requireUnfunded = true
		}
	}
	if patch.Empty() {
		return w, nil
	}

	if err := s.wishes.Update(ctx, id, patch, requireUnfunded); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// someone contributed or deleted in between
			if requireUnfunded {
				return nil, apperr.ErrUpdateWishPrice
			}
			return nil, apperr.ErrWishNotFound
		}
		return nil, apperr.Internal(err, "update wish")
	}
	s.invalidateFeeds(ctx)
	return s.load(ctx, id)
}

// Delete removes the owner's wish while nothing has been raised and returns it.
func (s *WishService) Delete(ctx context.Context, requesterID, id int64) (*models.Wish, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != requesterID {
		return nil, apperr.ErrDeleteOtherWish
	}
	if w.Funded() {
		return nil, apperr.ErrDeleteFundedWish
	}

	if err := s.wishes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if _, lookupErr := s.load(ctx, id); apperr.HasCode(lookupErr, apperr.CodeWishNotFound) {
				return nil, lookupErr
			}
			return nil, apperr.ErrDeleteFundedWish
		}
		return nil, apperr.Internal(err, "delete wish")
	}
	s.invalidateFeeds(ctx)
	return w, nil
}

// Duplicate copies a wish into the requester's list and bumps the source's copied counter.
func (s *WishService) Duplicate(ctx context.Context, requesterID, id int64) (*models.Wish, error) {
	if _, err := resolveCaller(ctx, s.users, requesterID); err != nil {
		return nil, err
	}
	src, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := &models.Wish{
		Name:        src.Name,
		Link:        src.Link,
		Image:       src.Image,
		Description: src.Description,
		Price:       src.Price,
		Raised:      decimal.Zero,
		OwnerID:     requesterID,
	}
	if _, err := s.wishes.Duplicate(ctx, id, dup); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.ErrWishNotFound
		}
		return nil, apperr.Internal(err, "duplicate wish")
	}
	s.invalidateFeeds(ctx)
	return dup, nil
}

func (s *WishService) ListRecent(ctx context.Context) ([]models.Wish, error) {
	return s.feed(ctx, cache.FeedRecent)
}

func (s *WishService) ListPopular(ctx context.Context) ([]models.Wish, error) {
	return s.feed(ctx, cache.FeedPopular)
}

func (s *WishService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error) {
	wishes, err := s.wishes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "list wishes")
	}
	return wishes, nil
}

func (s *WishService) ListByUsername(ctx context.Context, username string) ([]models.Wish, error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, apperr.Internal(err, "lookup user")
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	return s.ListByOwner(ctx, u.ID)
}

// Progress reports how far a wish is funded.
func (s *WishService) Progress(ctx context.Context, id int64) (*models.FundingProgress, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.ListByWish(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load offers")
	}
	return &models.FundingProgress{
		WishID:    w.ID,
		Price:     w.Price,
		Raised:    w.Raised,
		Remaining: w.Remaining(),
		Offers:    len(offers),
	}, nil
}

func (s *WishService) load(ctx context.Context, id int64) (*models.Wish, error) {
	w, err := s.wishes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load wish")
	}
	if w == nil {
		return nil, apperr.ErrWishNotFound
	}
	return w, nil
}

// feed serves a snapshot from the cache, falling back to the database.
func (s *WishService) feed(ctx context.Context, feed cache.Feed) ([]models.Wish, error) {
	wishes, err := s.feeds.Get(ctx, feed)
	switch {
	case err == nil:
		metrics.RecordFeedLookup(string(feed), metrics.FeedHit)
		return wishes, nil
	case errors.Is(err, cache.ErrMiss):
		metrics.RecordFeedLookup(string(feed), metrics.FeedMiss)
	default:
		metrics.RecordFeedLookup(string(feed), metrics.FeedError)
		s.log.Warnw("feed_cache_get_failed", "feed", feed, "err", err)
	}

	version := s.feeds.Version()
	wishes, err = loadFeed(ctx, s.wishes, feed)
	if err != nil {
		return nil, apperr.Internal(err, "list wishes")
	}
	// a write committed during the load makes this snapshot stale
	if _, err := s.feeds.SetIfCurrent(ctx, feed, wishes, version); err != nil {
		s.log.Warnw("feed_cache_set_failed", "feed", feed, "err", err)
	}
	return wishes, nil
}

func (s *WishService) invalidateFeeds(ctx context.Context) {
	invalidateFeeds(ctx, s.feeds, s.log)
}

func loadFeed(ctx context.Context, wishes repository.WishRepo, feed cache.Feed) ([]models.Wish, error) {
	if feed == cache.FeedPopular {
		return wishes.ListPopular(ctx, models.PopularWishesLimit)
	}
	return wishes.ListRecent(ctx, models.RecentWishesLimit)
}

func invalidateFeeds(ctx context.Context, feeds cache.FeedCache, log *logger.Logger) {
	if err := feeds.Invalidate(ctx); err != nil {
		log.Warnw("feed_cache_invalidate_failed", "err", err)
	}
}

// checkAmount requires a positive value that fits the money columns.
func checkAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperr.InvalidAmount(field)
	}
	if models.ExceedsMax(d) {
		return tooLarge(field)
	}
	return nil
}

func tooLarge(field string) error {
	return apperr.AmountTooLarge(field, models.MaxMoney.StringFixed(models.MoneyScale))
}

// resolveCaller loads the authenticated user; a token for a vanished user is Unauthorized.
func resolveCaller(ctx context.Context, users repository.UserRepo, id int64) (*models.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	if u == nil {
		return nil, apperr.ErrUnauthorized
	}
	return u, nil
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
