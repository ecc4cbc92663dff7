package models

import "time"

// Defaults applied to profile fields left empty at sign-up.
const (
	DefaultAbout  = "Nothing told about themselves yet"
	DefaultAvatar = "https://i.pravatar.cc/300"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"` // stored lowercase
	Email        string    `json:"email" db:"email"`       // stored lowercase
	PasswordHash string    `json:"-" db:"password_hash"`   // don’t expose hash
	About        string    `json:"about" db:"about"`
	Avatar       string    `json:"avatar" db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the projection of a user visible to other users (no email).
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	About     string    `json:"about"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips private fields from u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		About:     u.About,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Owner is the short form of a user embedded into wish views.
type Owner struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UserPatch carries the mutable profile fields; nil means unchanged.
// PasswordHash is already hashed when it reaches the repository.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	About        *string
	Avatar       *string
}
