package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kupipodariday/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	userColumns = `id, username, email, password_hash, about, avatar, created_at, updated_at`

	insertUserSQL = `INSERT INTO users (username, email, password_hash, about, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`
	selectUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	selectUserByEmailSQL    = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectUsersByQuerySQL   = `SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = ? ORDER BY id`
)

// Create inserts a new user and returns its ID. ErrDuplicate if username or email is taken.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	now := nowUTC()
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertUserSQL),
		u.Username, u.Email, u.PasswordHash, u.About, u.Avatar, now, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return id, nil
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUserByIDSQL, id)
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUserByUsernameSQL, username)
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserByEmailSQL, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by %v: %w", arg, err)
	}
	return &u, nil
}

// FindByUsernameOrEmail returns users whose username or email equals query.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(selectUsersByQuerySQL), query, query); err != nil {
		return nil, fmt.Errorf("find users %q: %w", query, err)
	}
	return users, nil
}

// Update applies the non-nil fields of patch. ErrDuplicate on a username/email clash.
func (r *UserRepository) Update(ctx context.Context, id int64, patch models.UserPatch) error {
	var set setClause
	if patch.Username != nil {
		set.add("username", *patch.Username)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		set.add("password_hash", *patch.PasswordHash)
	}
	if patch.About != nil {
		set.add("about", *patch.About)
	}
	if patch.Avatar != nil {
		set.add("avatar", *patch.Avatar)
	}
	if set.empty() {
		return nil
	}
	set.add("updated_at", nowUTC())

	query := `UPDATE users SET ` + set.String() + ` WHERE id = ?`
	args := append(set.args, id)
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user %d: %w", id, err)
	}
	return nil
}
