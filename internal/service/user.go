package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/messagely/messagely-go/internal/apperr"
	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/repository"
)

var (
	ErrUsernameTaken = apperr.New(apperr.ErrConflict, "username already taken")
	ErrUserNotFound  = apperr.New(apperr.ErrNotFound, "user not found")
)

// dummyPassword is hashed once and verified against when a login names an
// unknown user, so both failure paths spend the same hashing time.
const dummyPassword = "messagely-dummy-password"

// UserService is the user directory: registration, credential checks,
// last-login tracking and profile lookup.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register validates req, hashes the password and persists the user with
// joined_at set to now.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		JoinedAt:     s.now(),
	}

	// The pre-check races with concurrent registrations; the store's
	// uniqueness constraint is authoritative.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "username", user.Username)
	return user, nil
}

// Authenticate reports whether password matches the stored hash for
// username. An unknown username is a plain false, not an error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burnDummyVerify(password)
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}

	return s.hasher.Verify(password, user.PasswordHash), nil
}

func (s *UserService) burnDummyVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			slog.Error("hash dummy password", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		s.hasher.Verify(password, s.dummyHash)
	}
}

// RecordLogin sets last_login_at to now.
func (s *UserService) RecordLogin(ctx context.Context, username string) error {
	if err := s.users.UpdateLastLogin(ctx, username, s.now()); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// List returns every user's public summary ordered by username.
func (s *UserService) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the profile of username without the password hash.
func (s *UserService) Get(ctx context.Context, username string) (model.UserProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserProfile{}, ErrUserNotFound
		}
		return model.UserProfile{}, fmt.Errorf("get user: %w", err)
	}
	return user.Profile(), nil
}
