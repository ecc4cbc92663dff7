package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kupipodariday/internal/apperr"
	"kupipodariday/internal/config"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost matches the cost used by existing hashes.
const passwordCost = bcrypt.DefaultCost

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var (
	errEmptyPassword   = errors.New("password is empty")
	errPasswordTooLong = errors.New("password is too long")
)

// AuthService handles registration, credential checks and tokens.
type AuthService struct {
	users      repository.UserRepo
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(users repository.UserRepo, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:      users,
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   cfg.TokenTTL,
	}
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Register creates a user with normalized username/email and a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := normalize(in.Username)
	email := normalize(in.Email)
	if username == "" {
		return nil, apperr.Validation("username", "must not be empty")
	}
	if email == "" {
		return nil, apperr.Validation("email", "must not be empty")
	}

	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := passwordHash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		About:        orDefault(in.About, models.DefaultAbout),
		Avatar:       orDefault(in.Avatar, models.DefaultAvatar),
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrUserAlreadyExists
		}
		return nil, apperr.Internal(err, "create user")
	}
	return u, nil
}

func (s *AuthService) ensureFree(ctx context.Context, username, email string) error {
	byName, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return apperr.Internal(err, "lookup user")
	}
	if byName != nil {
		return apperr.ErrUserAlreadyExists
	}
	byEmail, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Internal(err, "lookup user")
	}
	if byEmail != nil {
		return apperr.ErrUserAlreadyExists
	}
	return nil
}

// Authenticate returns the user id for valid credentials. Unknown user and
// wrong password fail the same way and take about the same time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	u, err := s.users.GetByUsername(ctx, normalize(username))
	if err != nil {
		return 0, apperr.Internal(err, "lookup user")
	}
	if u == nil {
		_ = verifyPassword(dummyHash(), password)
		return 0, apperr.ErrLoginOrPasswordIncorrect
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return 0, apperr.ErrLoginOrPasswordIncorrect
	}
	return u.ID, nil
}

// GenerateToken validates credentials and returns JWT
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	id, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(id)
}

// IssueToken signs an HS256 token for userID.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", apperr.Internal(err, "sign token")
	}
	return signed, nil
}

// ParseToken parses JWT and returns userID
func (s *AuthService) ParseToken(accessToken string) (int64, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, apperr.Wrap(err, apperr.KindUnauthorized, apperr.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, apperr.ErrUnauthorized
	}
	return claims.UserID, nil
}

// passwordHash hashes a user-supplied password, turning input problems into
// validation errors.
func passwordHash(password string) (string, error) {
	hash, err := hashPassword(password)
	switch {
	case err == nil:
		return hash, nil
	case errors.Is(err, errEmptyPassword):
		return "", apperr.Validation("password", "must not be empty")
	case errors.Is(err, errPasswordTooLong), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", apperr.Validation("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	default:
		return "", apperr.Internal(err, "hash password")
	}
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", errPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is compared against when the user does not exist.
func dummyHash() string {
	dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("kupipodariday-dummy"), passwordCost)
		if err == nil {
			dummy = string(h)
		}
	})
	return dummy
}

// normalize lowercases and trims usernames, emails and lookup queries.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
