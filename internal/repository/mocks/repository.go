package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linkforge/shortlink/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// CreateLink persists a new short link
func (m *LinkRepository) CreateLink(ctx context.Context, link *domain.ShortLink) (*domain.ShortLink, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// GetLink retrieves a link by its short key regardless of owner
func (m *LinkRepository) GetLink(ctx context.Context, shortKey string) (*domain.ShortLink, error) {
	args := m.Called(ctx, shortKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// GetLinkForOwner retrieves a link by short key scoped to an owner
func (m *LinkRepository) GetLinkForOwner(ctx context.Context, ownerID, shortKey string) (*domain.ShortLink, error) {
	args := m.Called(ctx, ownerID, shortKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// ListLinks retrieves one page of an owner's links
func (m *LinkRepository) ListLinks(ctx context.Context, ownerID string, limit, offset int) ([]*domain.ShortLink, int, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ShortLink), args.Int(1), args.Error(2)
}

// ListAllForOwner retrieves every link an owner has
func (m *LinkRepository) ListAllForOwner(ctx context.Context, ownerID string) ([]*domain.ShortLink, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ShortLink), args.Error(1)
}

// UpdateLink applies a metadata update to an owner's link
func (m *LinkRepository) UpdateLink(ctx context.Context, ownerID, shortKey string, update domain.UpdateLinkRequest) (*domain.ShortLink, error) {
	args := m.Called(ctx, ownerID, shortKey, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLink), args.Error(1)
}

// DeleteLink removes an owner's link
func (m *LinkRepository) DeleteLink(ctx context.Context, ownerID, shortKey string) error {
	args := m.Called(ctx, ownerID, shortKey)
	return args.Error(0)
}

// RecordClick counts one resolution and returns the target URL
func (m *LinkRepository) RecordClick(ctx context.Context, shortKey string, click domain.Click) (string, error) {
	args := m.Called(ctx, shortKey, click)
	return args.String(0), args.Error(1)
}

// CountClicksSince counts a link's clicks at or after the cutoff
func (m *LinkRepository) CountClicksSince(ctx context.Context, linkID int64, since time.Time) (int64, error) {
	args := m.Called(ctx, linkID, since)
	return args.Get(0).(int64), args.Error(1)
}

// RecentClicks retrieves a link's most recent clicks
func (m *LinkRepository) RecentClicks(ctx context.Context, linkID int64, limit int) ([]domain.Click, error) {
	args := m.Called(ctx, linkID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Click), args.Error(1)
}

// UserRepository is a mock implementation of repository.UserRepository
type UserRepository struct {
	mock.Mock
}

// CreateUser persists a new account
func (m *UserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetUserByEmail retrieves an account by email
func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// GetUser retrieves an account by ID
func (m *UserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// LogRepository is a mock implementation of repository.LogRepository
type LogRepository struct {
	mock.Mock
}

// InsertRequestLog stores one request log entry
func (m *LogRepository) InsertRequestLog(ctx context.Context, entry *domain.RequestLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
