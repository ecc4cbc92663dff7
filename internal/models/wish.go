package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Feed sizes for the recent and popular snapshots.
const (
	RecentWishesLimit  = 40
	PopularWishesLimit = 20
)

type Wish struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Link        string          `json:"link" db:"link"`
	Image       string          `json:"image" db:"image"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Raised      decimal.Decimal `json:"raised" db:"raised"` // 0 <= raised <= price
	Copied      int64           `json:"copied" db:"copied"`
	OwnerID     int64           `json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Remaining is how much can still be pooled toward the wish.
func (w Wish) Remaining() decimal.Decimal {
	rest := w.Price.Sub(w.Raised)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Funded reports whether anybody has contributed yet.
func (w Wish) Funded() bool {
	return w.Raised.IsPositive()
}

// WishView is a wish enriched with its owner and projected offers.
type WishView struct {
	Wish
	Owner  Owner       `json:"owner"`
	Offers []OfferView `json:"offers"`
}

// WishPatch carries the mutable fields of a wish; nil means unchanged.
type WishPatch struct {
	Name        *string
	Link        *string
	Image       *string
	Description *string
	Price       *decimal.Decimal
}

// Empty reports whether the patch changes nothing.
func (p WishPatch) Empty() bool {
	return p.Name == nil && p.Link == nil && p.Image == nil && p.Description == nil && p.Price == nil
}

// FundingProgress is a point-in-time snapshot of how far a wish is funded.
type FundingProgress struct {
	WishID    int64           `json:"wish_id"`
	Price     decimal.Decimal `json:"price"`
	Raised    decimal.Decimal `json:"raised"`
	Remaining decimal.Decimal `json:"remaining"`
	Offers    int             `json:"offers"`
}
