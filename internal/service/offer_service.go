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

type OfferService struct {
	offers repository.OfferRepo
	wishes repository.WishRepo
	users  repository.UserRepo
	feeds  *cache.VersionedFeedCache
	log    *logger.Logger
}

func NewOfferService(
	offers repository.OfferRepo,
	wishes repository.WishRepo,
	users repository.UserRepo,
	feeds cache.FeedCache,
	log *logger.Logger,
) *OfferService {
	return &OfferService{offers: offers, wishes: wishes, users: users, feeds: cache.NewVersioned(feeds), log: componentLogger(log, "offers")}
}

// Contribute pledges money toward someone else's wish. The raise and the
// offer insert are applied atomically and never push raised above price.
func (s *OfferService) Contribute(ctx context.Context, contributorID int64, in ContributeInput) (*models.Offer, error) {
	amount := models.Money(in.Amount)
	offer, err := s.contribute(ctx, contributorID, in, amount)

	switch {
	case err == nil:
		metrics.RecordOffer(metrics.OfferAccepted, amount)
	case apperr.IsKind(err, apperr.KindInternal):
		metrics.RecordOffer(metrics.OfferFailed, amount)
	default:
		metrics.RecordOffer(metrics.OfferRejected, amount)
	}
	return offer, err
}

func (s *OfferService) contribute(ctx context.Context, contributorID int64, in ContributeInput, amount decimal.Decimal) (*models.Offer, error) {
	if _, err := resolveCaller(ctx, s.users, contributorID); err != nil {
		return nil, err
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}

	w, err := s.loadWish(ctx, in.WishID)
	if err != nil {
		return nil, err
	}
	if w.OwnerID == contributorID {
		return nil, apperr.ErrOwnWishOffer
	}
	if w.Raised.Add(amount).GreaterThan(w.Price) {
		return nil, apperr.ErrOfferTooMuchMoney
	}

	o := &models.Offer{
		UserID: contributorID,
		WishID: w.ID,
		Amount: amount,
		Hidden: in.Hidden,
	}
	if _, err := s.offers.Contribute(ctx, o); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// another offer landed first, or the wish was deleted meanwhile
			if _, lookupErr := s.loadWish(ctx, in.WishID); apperr.HasCode(lookupErr, apperr.CodeWishNotFound) {
				return nil, lookupErr
			}
			return nil, apperr.ErrOfferTooMuchMoney
		}
		return nil, apperr.Internal(err, "contribute")
	}

	invalidateFeeds(ctx, s.feeds, s.log)
	return o, nil
}

// Get returns one offer as seen by viewerID.
func (s *OfferService) Get(ctx context.Context, viewerID, id int64) (*models.OfferView, error) {
	o, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load offer")
	}
	if o == nil {
		return nil, apperr.ErrOfferNotFound
	}
	v := projectOffer(viewerID, *o)
	return &v, nil
}

// List returns every offer, newest first, as seen by viewerID.
func (s *OfferService) List(ctx context.Context, viewerID int64) ([]models.OfferView, error) {
	offers, err := s.offers.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list offers")
	}
	return ProjectOffers(viewerID, offers), nil
}

func (s *OfferService) loadWish(ctx context.Context, id int64) (*models.Wish, error) {
	w, err := s.wishes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load wish")
	}
	if w == nil {
		return nil, apperr.ErrWishNotFound
	}
	return w, nil
}
