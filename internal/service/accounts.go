package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/linkforge/shortlink/internal/auth"
	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/repository"
)

const minPasswordLength = 8

// accounts implements the Accounts interface
type accounts struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAccounts creates a new identity and token service
func NewAccounts(users repository.UserRepository, tokens *auth.TokenManager) Accounts {
	return &accounts{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a new account
func (s *accounts) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidTarget)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidTarget)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidTarget, minPasswordLength)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login exchanges credentials for a bearer token
func (s *accounts) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.TokenResponse{
		TokenType:   "Bearer",
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Verify resolves a bearer token to an owner ID
func (s *accounts) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

// Ensure accounts implements Accounts interface
var _ Accounts = (*accounts)(nil)
