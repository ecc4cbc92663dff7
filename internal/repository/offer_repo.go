package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kupipodariday/internal/models"

	"github.com/jmoiron/sqlx"
)

type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

var _ OfferRepo = (*OfferRepository)(nil)

const (
	offerWithUserSelect = `SELECT o.id, o.user_id, o.wish_id, o.amount, o.hidden, o.created_at, o.updated_at,
		u.username, u.avatar
		FROM offers o JOIN users u ON u.id = o.user_id`

	// raise lands only if the contributor is not the owner and the sum stays within price
	raiseWishSQL = `UPDATE wishes SET raised = ROUND(raised + ?, 2), updated_at = ?
		WHERE id = ? AND owner_id <> ? AND ROUND(raised + ?, 2) <= price`
	insertOfferSQL = `INSERT INTO offers (user_id, wish_id, amount, hidden, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	selectOfferByIDSQL    = offerWithUserSelect + ` WHERE o.id = ?`
	selectOffersSQL       = offerWithUserSelect + ` ORDER BY o.created_at DESC, o.id DESC`
	selectOffersByWishSQL = offerWithUserSelect + ` WHERE o.wish_id = ? ORDER BY o.created_at ASC, o.id ASC`
)

// Contribute raises the wish by o.Amount and records the offer atomically.
// ErrConflict when the raise would overfund the wish or the contributor owns it.
func (r *OfferRepository) Contribute(ctx context.Context, o *models.Offer) (int64, error) {
	now := nowUTC()
	var id int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(raiseWishSQL),
			o.Amount, now, o.WishID, o.UserID, o.Amount,
		)
		if err != nil {
			return fmt.Errorf("raise wish %d: %w", o.WishID, err)
		}
		if err := expectRow(res, "raise wish", o.WishID); err != nil {
			return err
		}
		err = tx.QueryRowxContext(ctx, tx.Rebind(insertOfferSQL),
			o.UserID, o.WishID, o.Amount, o.Hidden, now, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert offer for wish %d: %w", o.WishID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	o.ID, o.CreatedAt, o.UpdatedAt = id, now, now
	return id, nil
}

// GetByID returns (nil, nil) if the offer does not exist.
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*models.OfferWithUser, error) {
	var o models.OfferWithUser
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(selectOfferByIDSQL), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select offer %d: %w", id, err)
	}
	return &o, nil
}

// List returns all offers, newest first.
func (r *OfferRepository) List(ctx context.Context) ([]models.OfferWithUser, error) {
	offers := []models.OfferWithUser{}
	if err := r.db.SelectContext(ctx, &offers, selectOffersSQL); err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	return offers, nil
}

// ListByWish returns the offers made toward a wish in the order they landed.
func (r *OfferRepository) ListByWish(ctx context.Context, wishID int64) ([]models.OfferWithUser, error) {
	offers := []models.OfferWithUser{}
	if err := r.db.SelectContext(ctx, &offers, r.db.Rebind(selectOffersByWishSQL), wishID); err != nil {
		return nil, fmt.Errorf("select offers of wish %d: %w", wishID, err)
	}
	return offers, nil
}
