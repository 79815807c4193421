package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linkforge/shortlink/internal/domain"
)

// Registry is a mock implementation of service.Registry
type Registry struct {
	mock.Mock
}

// CreateLink creates a new short link for the owner
func (m *Registry) CreateLink(ctx context.Context, ownerID string, req domain.CreateLinkRequest) (*domain.ShortLink, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// Resolve records a click and returns the target URL
func (m *Registry) Resolve(ctx context.Context, shortKey string, click domain.Click) (string, error) {
	args := m.Called(ctx, shortKey, click)
	return args.String(0), args.Error(1)
}

// ListLinks retrieves one page of an owner's links
func (m *Registry) ListLinks(ctx context.Context, ownerID string, page, limit int) (*domain.LinkPage, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkPage), args.Error(1)
}

// UpdateLink applies a metadata update to an owner's link
func (m *Registry) UpdateLink(ctx context.Context, ownerID, shortKey string, req domain.UpdateLinkRequest) (*domain.ShortLink, error) {
	args := m.Called(ctx, ownerID, shortKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// DeleteLink removes an owner's link
func (m *Registry) DeleteLink(ctx context.Context, ownerID, shortKey string) error {
	args := m.Called(ctx, ownerID, shortKey)
	return args.Error(0)
}

// LinkStats computes the analytics projection for an owner's link
func (m *Registry) LinkStats(ctx context.Context, ownerID, shortKey string) (*domain.LinkStats, error) {
	args := m.Called(ctx, ownerID, shortKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkStats), args.Error(1)
}

// DashboardStats aggregates an owner's links for the dashboard view
func (m *Registry) DashboardStats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

// Accounts is a mock implementation of service.Accounts
type Accounts struct {
	mock.Mock
}

// Register creates a new account
func (m *Accounts) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Login exchanges credentials for a bearer token
func (m *Accounts) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenResponse), args.Error(1)
}

// Verify resolves a bearer token to an owner ID
func (m *Accounts) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
