package service

import (
	"context"
	"time"

	"kupipodariday/internal/cache"
	"kupipodariday/internal/config"
	"kupipodariday/internal/logger"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	IssueToken(userID int64) (string, error)
	ParseToken(accessToken string) (int64, error)
}

// Users is the profile side of the user directory.
type Users interface {
	Me(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, requesterID int64, in UpdateUserInput) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.PublicUser, error)
	Search(ctx context.Context, query string) ([]models.PublicUser, error)
}

// Wishes is the wish ledger.
type Wishes interface {
	Create(ctx context.Context, ownerID int64, in CreateWishInput) (*models.Wish, error)
	Read(ctx context.Context, viewerID, id int64) (*models.WishView, error)
	Update(ctx context.Context, requesterID, id int64, in UpdateWishInput) (*models.Wish, error)
	Delete(ctx context.Context, requesterID, id int64) (*models.Wish, error)
	Duplicate(ctx context.Context, requesterID, id int64) (*models.Wish, error)
	ListRecent(ctx context.Context) ([]models.Wish, error)
	ListPopular(ctx context.Context) ([]models.Wish, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error)
	ListByUsername(ctx context.Context, username string) ([]models.Wish, error)
	Progress(ctx context.Context, id int64) (*models.FundingProgress, error)
}

// Offers is the offer ledger. Offers are immutable once accepted.
type Offers interface {
	Contribute(ctx context.Context, contributorID int64, in ContributeInput) (*models.Offer, error)
	Get(ctx context.Context, viewerID, id int64) (*models.OfferView, error)
	List(ctx context.Context, viewerID int64) ([]models.OfferView, error)
}

// Wishlists is the wishlist curator.
type Wishlists interface {
	Create(ctx context.Context, ownerID int64, in CreateWishlistInput) (*models.WishlistView, error)
	Read(ctx context.Context, id int64) (*models.WishlistView, error)
	Update(ctx context.Context, requesterID, id int64, in UpdateWishlistInput) (*models.WishlistView, error)
	Delete(ctx context.Context, requesterID, id int64) (*models.Wishlist, error)
	ListAll(ctx context.Context) ([]models.Wishlist, error)
}

// FeedWarmer keeps the cached wish feeds fresh.
// Stop via context cancellation in main() for graceful shutdown.
type FeedWarmer interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Authorization
	Users
	Wishes
	Offers
	Wishlists
	FeedWarmer
}

// Deps carries what the services need besides repositories.
type Deps struct {
	Auth  config.AuthConfig
	Feeds cache.FeedCache
	Log   *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	// one versioned cache shared by every service that reads or drops feeds
	feeds := cache.NewVersioned(deps.Feeds)
	return &Service{
		Authorization: NewAuthService(repos.Users, deps.Auth),
		Users:         NewUserService(repos.Users),
		Wishes:        NewWishService(repos.Wishes, repos.Users, repos.Offers, repos.Wishlists, feeds, deps.Log),
		Offers:        NewOfferService(repos.Offers, repos.Wishes, repos.Users, feeds, deps.Log),
		Wishlists:     NewWishlistService(repos.Wishlists, repos.Wishes, repos.Users),
		FeedWarmer:    NewFeedWarmerService(repos.Wishes, feeds, deps.Log),
	}
}

// componentLogger tags log with the service name; nil means discard.
func componentLogger(log *logger.Logger, name string) *logger.Logger {
	if log == nil {
		log = logger.Nop()
	}
	return log.With("component", name)
}
