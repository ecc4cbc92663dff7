package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kupipodariday/internal/models"

	"github.com/jmoiron/sqlx"
)

type WishlistRepository struct {
	db *sqlx.DB
}

func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

var _ WishlistRepo = (*WishlistRepository)(nil)

const (
	wishlistColumns = `id, name, description, image, owner_id, created_at, updated_at`

	insertWishlistSQL = `INSERT INTO wishlists (name, description, image, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	selectWishlistByIDSQL = `SELECT ` + wishlistColumns + ` FROM wishlists WHERE id = ?`
	selectWishlistsSQL    = `SELECT ` + wishlistColumns + ` FROM wishlists ORDER BY created_at DESC, id DESC`
	selectItemsSQL        = `SELECT w.id, w.name, w.link, w.image, w.description, w.price, w.raised, w.copied,
		w.owner_id, w.created_at, w.updated_at
		FROM wishlist_items wi JOIN wishes w ON w.id = wi.wish_id
		WHERE wi.wishlist_id = ? ORDER BY w.id`
	deleteItemsSQL    = `DELETE FROM wishlist_items WHERE wishlist_id = ?`
	deleteWishlistSQL = `DELETE FROM wishlists WHERE id = ?`
)

// Create inserts the wishlist and its memberships in one transaction.
func (r *WishlistRepository) Create(ctx context.Context, wl *models.Wishlist, itemIDs []int64) (int64, error) {
	now := nowUTC()
	var id int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(insertWishlistSQL),
			wl.Name, wl.Description, wl.Image, wl.OwnerID, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert wishlist %q: %w", wl.Name, err)
		}
		return insertItems(ctx, tx, id, itemIDs)
	})
	if err != nil {
		return 0, err
	}
	wl.ID, wl.CreatedAt, wl.UpdatedAt = id, now, now
	return id, nil
}

// GetByID returns (nil, nil) if the wishlist does not exist.
func (r *WishlistRepository) GetByID(ctx context.Context, id int64) (*models.Wishlist, error) {
	var wl models.Wishlist
	if err := r.db.GetContext(ctx, &wl, r.db.Rebind(selectWishlistByIDSQL), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select wishlist %d: %w", id, err)
	}
	return &wl, nil
}

// ListAll returns every wishlist, newest first.
func (r *WishlistRepository) ListAll(ctx context.Context) ([]models.Wishlist, error) {
	lists := []models.Wishlist{}
	if err := r.db.SelectContext(ctx, &lists, selectWishlistsSQL); err != nil {
		return nil, fmt.Errorf("select wishlists: %w", err)
	}
	return lists, nil
}

// Items returns the member wishes of a wishlist.
func (r *WishlistRepository) Items(ctx context.Context, wishlistID int64) ([]models.Wish, error) {
	items := []models.Wish{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(selectItemsSQL), wishlistID); err != nil {
		return nil, fmt.Errorf("select items of wishlist %d: %w", wishlistID, err)
	}
	return items, nil
}

// Update applies the non-nil fields of patch; a non-nil ItemIDs replaces the
// membership set. Everything happens in one transaction.
func (r *WishlistRepository) Update(ctx context.Context, id int64, patch models.WishlistPatch) error {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Image != nil {
		set.add("image", *patch.Image)
	}
	if set.empty() && patch.ItemIDs == nil {
		return nil
	}
	set.add("updated_at", nowUTC())

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `UPDATE wishlists SET ` + set.String() + ` WHERE id = ?`
		res, err := tx.ExecContext(ctx, tx.Rebind(query), append(set.args, id)...)
		if err != nil {
			return fmt.Errorf("update wishlist %d: %w", id, err)
		}
		if err := expectRow(res, "update wishlist", id); err != nil {
			return err
		}
		if patch.ItemIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(deleteItemsSQL), id); err != nil {
			return fmt.Errorf("clear items of wishlist %d: %w", id, err)
		}
		return insertItems(ctx, tx, id, patch.ItemIDs)
	})
}

// Delete removes the wishlist; memberships cascade, wishes stay.
func (r *WishlistRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(deleteWishlistSQL), id)
	if err != nil {
		return fmt.Errorf("delete wishlist %d: %w", id, err)
	}
	return expectRow(res, "delete wishlist", id)
}

func insertItems(ctx context.Context, tx *sqlx.Tx, wishlistID int64, wishIDs []int64) error {
	for _, wishID := range uniqueIDs(wishIDs) {
		if _, err := tx.ExecContext(ctx, tx.Rebind(insertWishlistItemSQL), wishlistID, wishID); err != nil {
			return fmt.Errorf("add wish %d to wishlist %d: %w", wishID, wishlistID, err)
		}
	}
	return nil
}
