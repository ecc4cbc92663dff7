package service

import (
	"context"
	"errors"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"
)

type UserService struct {
	users repository.UserRepo
}

func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{users: users}
}

// Me returns the caller's own profile, email included.
func (s *UserService) Me(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile applies a partial update. Username and email are normalized
// and must stay unique; a new password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, requesterID int64, in UpdateUserInput) (*models.User, error) {
	current, err := s.Me(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	var patch models.UserPatch
	if in.Username != nil {
		username := normalize(*in.Username)
		if username == "" {
			return nil, apperr.Validation("username", "must not be empty")
		}
		if username != current.Username {
			if err := s.ensureNotTaken(ctx, requesterID, s.users.GetByUsername, username); err != nil {
				return nil, err
			}
			patch.Username = &username
		}
	}
	if in.Email != nil {
		email := normalize(*in.Email)
		if email == "" {
			return nil, apperr.Validation("email", "must not be empty")
		}
		if email != current.Email {
			if err := s.ensureNotTaken(ctx, requesterID, s.users.GetByEmail, email); err != nil {
				return nil, err
			}
			patch.Email = &email
		}
	}
	if in.Password != nil {
		hash, err := passwordHash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	patch.About = in.About
	patch.Avatar = in.Avatar

	if err := s.users.Update(ctx, requesterID, patch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrUserAlreadyExists
		}
		return nil, apperr.Internal(err, "update user")
	}
	return s.Me(ctx, requesterID)
}

func (s *UserService) ensureNotTaken(
	ctx context.Context,
	requesterID int64,
	lookup func(context.Context, string) (*models.User, error),
	value string,
) error {
	other, err := lookup(ctx, value)
	if err != nil {
		return apperr.Internal(err, "lookup user")
	}
	if other != nil && other.ID != requesterID {
		return apperr.ErrUserAlreadyExists
	}
	return nil
}

// FindByUsername returns the public profile of username.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.PublicUser, error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return nil, apperr.Internal(err, "lookup user")
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	p := u.Public()
	return &p, nil
}

// Search matches the query exactly against usernames and emails.
func (s *UserService) Search(ctx context.Context, query string) ([]models.PublicUser, error) {
	out := []models.PublicUser{}
	q := normalize(query)
	if q == "" {
		return out, nil
	}
	users, err := s.users.FindByUsernameOrEmail(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "search users")
	}
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
