package service

import "github.com/shopspring/decimal"

type RegisterInput struct {
	Username string
	Email    string
	Password string
	About    string
	Avatar   string
}

// UpdateUserInput is a partial profile update; nil fields stay unchanged.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	About    *string
	Avatar   *string
}

type CreateWishInput struct {
	Name        string
	Link        string
	Image       string
	Description string
	Price       decimal.Decimal
	Raised      *decimal.Decimal
	WishlistIDs []int64
}

// UpdateWishInput has no raised/copied: those move only through offers and copies.
type UpdateWishInput struct {
	Name        *string
	Link        *string
	Image       *string
	Description *string
	Price       *decimal.Decimal
}

type ContributeInput struct {
	WishID int64
	Amount decimal.Decimal
	Hidden bool
}

type CreateWishlistInput struct {
	Name        string
	Description string
	Image       string
	ItemIDs     []int64
}

// UpdateWishlistInput replaces the member set when ItemIDs is non-nil.
type UpdateWishlistInput struct {
	Name        *string
	Description *string
	Image       *string
	ItemIDs     []int64
}
