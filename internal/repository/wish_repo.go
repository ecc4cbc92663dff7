package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kupipodariday/internal/models"

	"github.com/jmoiron/sqlx"
)

type WishRepository struct {
	db *sqlx.DB
}

func NewWishRepository(db *sqlx.DB) *WishRepository {
	return &WishRepository{db: db}
}

var _ WishRepo = (*WishRepository)(nil)

const (
	wishColumns = `id, name, link, image, description, price, raised, copied, owner_id, created_at, updated_at`

	insertWishSQL = `INSERT INTO wishes (name, link, image, description, price, raised, copied, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	insertWishlistItemSQL = `INSERT INTO wishlist_items (wishlist_id, wish_id) VALUES (?, ?)`
	selectWishByIDSQL     = `SELECT ` + wishColumns + ` FROM wishes WHERE id = ?`
	selectWishesByIDsSQL  = `SELECT ` + wishColumns + ` FROM wishes WHERE id IN (?) ORDER BY id`
	selectRecentWishesSQL = `SELECT ` + wishColumns + ` FROM wishes ORDER BY created_at DESC, id DESC LIMIT ?`
	selectTopWishesSQL    = `SELECT ` + wishColumns + ` FROM wishes ORDER BY copied DESC, created_at DESC, id DESC LIMIT ?`
	selectWishesByOwner   = `SELECT ` + wishColumns + ` FROM wishes WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	deleteUnfundedWishSQL = `DELETE FROM wishes WHERE id = ? AND raised = 0`
	incrementCopiedSQL    = `UPDATE wishes SET copied = copied + 1 WHERE id = ?`
)

// Create inserts w and links it to wishlistIDs in one transaction.
func (r *WishRepository) Create(ctx context.Context, w *models.Wish, wishlistIDs []int64) (int64, error) {
	now := nowUTC()
	var id int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(insertWishSQL),
			w.Name, w.Link, w.Image, w.Description, w.Price, w.Raised, w.Copied, w.OwnerID, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert wish %q: %w", w.Name, err)
		}
		for _, listID := range uniqueIDs(wishlistIDs) {
			if _, err := tx.ExecContext(ctx, tx.Rebind(insertWishlistItemSQL), listID, id); err != nil {
				return fmt.Errorf("link wish %d to wishlist %d: %w", id, listID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	w.ID, w.CreatedAt, w.UpdatedAt = id, now, now
	return id, nil
}

// GetByID returns (nil, nil) if the wish does not exist.
func (r *WishRepository) GetByID(ctx context.Context, id int64) (*models.Wish, error) {
	var w models.Wish
	if err := r.db.GetContext(ctx, &w, r.db.Rebind(selectWishByIDSQL), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select wish %d: %w", id, err)
	}
	return &w, nil
}

// GetByIDs returns the wishes that exist among ids; missing ids are simply absent.
func (r *WishRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Wish, error) {
	wishes := []models.Wish{}
	if len(ids) == 0 {
		return wishes, nil
	}
	query, args, err := sqlx.In(selectWishesByIDsSQL, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("expand wish ids: %w", err)
	}
	if err := r.db.SelectContext(ctx, &wishes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select wishes by ids: %w", err)
	}
	return wishes, nil
}

func (r *WishRepository) ListRecent(ctx context.Context, limit int) ([]models.Wish, error) {
	return r.list(ctx, "recent", selectRecentWishesSQL, limit)
}

func (r *WishRepository) ListPopular(ctx context.Context, limit int) ([]models.Wish, error) {
	return r.list(ctx, "popular", selectTopWishesSQL, limit)
}

func (r *WishRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Wish, error) {
	return r.list(ctx, "owner", selectWishesByOwner, ownerID)
}

func (r *WishRepository) list(ctx context.Context, what, query string, args ...any) ([]models.Wish, error) {
	wishes := []models.Wish{}
	if err := r.db.SelectContext(ctx, &wishes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select %s wishes: %w", what, err)
	}
	return wishes, nil
}

// Update applies the non-nil fields of patch. With requireUnfunded the write only
// lands while raised is still zero. ErrConflict when no row matched.
func (r *WishRepository) Update(ctx context.Context, id int64, patch models.WishPatch, requireUnfunded bool) error {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Link != nil {
		set.add("link", *patch.Link)
	}
	if patch.Image != nil {
		set.add("image", *patch.Image)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Price != nil {
		set.add("price", *patch.Price)
	}
	if set.empty() {
		return nil
	}
	set.add("updated_at", nowUTC())

	query := `UPDATE wishes SET ` + set.String() + ` WHERE id = ?`
	if requireUnfunded {
		query += ` AND raised = 0`
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("update wish %d: %w", id, err)
	}
	return expectRow(res, "update wish", id)
}

// Delete removes the wish only while nothing has been raised. ErrConflict otherwise.
func (r *WishRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(deleteUnfundedWishSQL), id)
	if err != nil {
		return fmt.Errorf("delete wish %d: %w", id, err)
	}
	return expectRow(res, "delete wish", id)
}

// Duplicate bumps the source's copied counter and inserts dup in one
// transaction. ErrConflict if the source vanished.
func (r *WishRepository) Duplicate(ctx context.Context, sourceID int64, dup *models.Wish) (int64, error) {
	now := nowUTC()
	var id int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(incrementCopiedSQL), sourceID)
		if err != nil {
			return fmt.Errorf("increment copied of wish %d: %w", sourceID, err)
		}
		if err := expectRow(res, "increment copied of wish", sourceID); err != nil {
			return err
		}
		err = tx.QueryRowxContext(ctx, tx.Rebind(insertWishSQL),
			dup.Name, dup.Link, dup.Image, dup.Description, dup.Price, dup.Raised, dup.Copied, dup.OwnerID, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert copy of wish %d: %w", sourceID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	dup.ID, dup.CreatedAt, dup.UpdatedAt = id, now, now
	return id, nil
}

func expectRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
