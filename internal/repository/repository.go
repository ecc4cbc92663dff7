package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kupipodariday/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConflict means a conditional write matched no rows.
	ErrConflict = errors.New("conditional write matched no rows")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("unique constraint violated")
)

type UserRepo interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, query string) ([]models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) error
}

type WishRepo interface {
	Create(ctx context.Context, w *models.Wish, wishlistIDs []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Wish, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Wish, error)
	ListRecent(ctx context.Context, limit int) ([]models.Wish, error)
	ListPopular(ctx context.Context, limit int) ([]models.Wish, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error)
	Update(ctx context.Context, id int64, patch models.WishPatch, requireUnfunded bool) error
	Delete(ctx context.Context, id int64) error
	Duplicate(ctx context.Context, sourceID int64, dup *models.Wish) (int64, error)
}

type OfferRepo interface {
	Contribute(ctx context.Context, o *models.Offer) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.OfferWithUser, error)
	List(ctx context.Context) ([]models.OfferWithUser, error)
	ListByWish(ctx context.Context, wishID int64) ([]models.OfferWithUser, error)
}

type WishlistRepo interface {
	Create(ctx context.Context, wl *models.Wishlist, itemIDs []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Wishlist, error)
	ListAll(ctx context.Context) ([]models.Wishlist, error)
	Items(ctx context.Context, wishlistID int64) ([]models.Wish, error)
	Update(ctx context.Context, id int64, patch models.WishlistPatch) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	Users     UserRepo
	Wishes    WishRepo
	Offers    OfferRepo
	Wishlists WishlistRepo
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Users:     NewUserRepository(db),
		Wishes:    NewWishRepository(db),
		Offers:    NewOfferRepository(db),
		Wishlists: NewWishlistRepository(db),
	}
}

// nowUTC stamps created_at/updated_at; replaced in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isUniqueViolation recognizes unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// setClause accumulates "col = ?" assignments for partial updates.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) empty() bool { return len(s.cols) == 0 }

func (s *setClause) String() string { return strings.Join(s.cols, ", ") }

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
