package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/messagely/messagely-go/internal/apperr"
	"github.com/messagely/messagely-go/internal/model"
)

var ErrInvalidCredentials = apperr.New(apperr.ErrUnauthenticated, "invalid username or password")

// AuthService turns registrations and logins into session tokens.
type AuthService struct {
	users  *UserService
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register creates the account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.TokenResponse, error) {
	user, err := s.users.Register(ctx, req)
	if err != nil {
		return model.TokenResponse{}, err
	}
	return s.issue(user.Username)
}

// Login checks the credentials, records the login and returns a token. Unknown
// usernames and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return model.TokenResponse{}, err
	}

	ok, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if !ok {
		slog.WarnContext(ctx, "login failed", "username", req.Username)
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	if err := s.users.RecordLogin(ctx, req.Username); err != nil {
		return model.TokenResponse{}, err
	}

	return s.issue(req.Username)
}

func (s *AuthService) issue(username string) (model.TokenResponse, error) {
	token, err := s.tokens.Issue(username)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return model.TokenResponse{Token: token}, nil
}
