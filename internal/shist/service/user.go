package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/cryptox"
	"github.com/shist-app/shist/pkg/idx"
	"github.com/shist-app/shist/pkg/jwtx"
	"github.com/shist-app/shist/pkg/slogx"
)

var (
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

const minPasswordLength = 8

// UserService handles registration and login.
type UserService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

// Register creates a new account with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, username, displayName, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}
	if username == "" || len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidRegistration
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and mints a session access token. Unknown
// username and wrong password collapse into the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return "", domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login failed", slog.String("user_id", user.ID))
		return "", domain.User{}, ErrInvalidCredentials
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(user.ID, user.Username, user.DisplayName, s.Issuer, ttl, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return "", domain.User{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return token, user, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}
