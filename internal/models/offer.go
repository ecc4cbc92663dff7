package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RedactedAmount replaces the amount of hidden offers in public views.
const RedactedAmount = "***"

// Offer is an immutable pledge of money toward a wish.
type Offer struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"userId" db:"user_id"`
	WishID    int64           `json:"itemId" db:"wish_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Hidden    bool            `json:"hidden" db:"hidden"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// OfferWithUser is an offer joined with the contributor's public fields.
type OfferWithUser struct {
	Offer
	Username string `db:"username"`
	Avatar   string `db:"avatar"`
}

// OfferView is the read-side projection of an offer. Amount is either a number
// or RedactedAmount.
type OfferView struct {
	ID        int64     `json:"id"`
	WishID    int64     `json:"itemId"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Amount    any       `json:"amount"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"createdAt"`
}
