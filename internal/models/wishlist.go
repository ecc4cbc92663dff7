package models

import "time"

type Wishlist struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	OwnerID     int64     `json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// WishlistView is a wishlist with its resolved member wishes.
type WishlistView struct {
	Wishlist
	Owner Owner  `json:"owner"`
	Items []Wish `json:"items"`
}

// WishlistPatch carries the mutable fields of a wishlist; nil means unchanged.
// A non-nil ItemIDs replaces the whole membership set.
type WishlistPatch struct {
	Name        *string
	Description *string
	Image       *string
	ItemIDs     []int64
}
