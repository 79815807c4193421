package service

import (
	"context"

	"github.com/linkforge/shortlink/internal/domain"
)

// Registry defines the interface for short link operations
type Registry interface {
	// CreateLink validates the target, assigns or accepts a short key,
	// and persists the link for the owner
	CreateLink(ctx context.Context, ownerID string, req domain.CreateLinkRequest) (*domain.ShortLink, error)

	// Resolve looks up a short key, records the click, and returns the
	// target URL. The accounting write and the decision to redirect are
	// one unit: an error means no redirect happened.
	Resolve(ctx context.Context, shortKey string, click domain.Click) (string, error)

	// ListLinks retrieves one page of an owner's links
	ListLinks(ctx context.Context, ownerID string, page, limit int) (*domain.LinkPage, error)

	// UpdateLink applies a metadata update to an owner's link
	UpdateLink(ctx context.Context, ownerID, shortKey string, req domain.UpdateLinkRequest) (*domain.ShortLink, error)

	// DeleteLink removes an owner's link and its click history
	DeleteLink(ctx context.Context, ownerID, shortKey string) error

	// LinkStats computes the analytics projection for an owner's link
	LinkStats(ctx context.Context, ownerID, shortKey string) (*domain.LinkStats, error)

	// DashboardStats aggregates an owner's links for the dashboard view
	DashboardStats(ctx context.Context, ownerID string) (*domain.DashboardStats, error)
}

// Accounts defines the interface for the identity and token service
type Accounts interface {
	// Register creates a new account
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)

	// Login exchanges credentials for a bearer token
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)

	// Verify resolves a bearer token to an owner ID
	Verify(token string) (string, error)
}
