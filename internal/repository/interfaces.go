package repository

import (
	"context"
	"time"

	"github.com/linkforge/shortlink/internal/domain"
)

// LinkRepository defines the interface for short link data operations
type LinkRepository interface {
	// CreateLink persists a new short link. The short key carries a
	// uniqueness constraint; a collision returns domain.ErrAliasTaken
	// rather than overwriting.
	CreateLink(ctx context.Context, link *domain.ShortLink) (*domain.ShortLink, error)

	// GetLink retrieves a link by its short key regardless of owner
	GetLink(ctx context.Context, shortKey string) (*domain.ShortLink, error)

	// GetLinkForOwner retrieves a link by short key scoped to an owner.
	// Foreign-owned keys return domain.ErrNotFound.
	GetLinkForOwner(ctx context.Context, ownerID, shortKey string) (*domain.ShortLink, error)

	// ListLinks retrieves one page of an owner's links, newest first,
	// along with the owner's total link count.
	ListLinks(ctx context.Context, ownerID string, limit, offset int) ([]*domain.ShortLink, int, error)

	// ListAllForOwner retrieves every link an owner has, newest first
	ListAllForOwner(ctx context.Context, ownerID string) ([]*domain.ShortLink, error)

	// UpdateLink applies a metadata update to an owner's link and returns
	// the updated row. Only description, tags, and the active flag are
	// mutable.
	UpdateLink(ctx context.Context, ownerID, shortKey string, update domain.UpdateLinkRequest) (*domain.ShortLink, error)

	// DeleteLink removes an owner's link and its click history
	DeleteLink(ctx context.Context, ownerID, shortKey string) error

	// RecordClick atomically increments the click counter and appends one
	// history entry for a resolvable link, returning the target URL.
	// Inactive or expired links return domain.ErrLinkGone with no state
	// change; unknown keys return domain.ErrNotFound.
	RecordClick(ctx context.Context, shortKey string, click domain.Click) (string, error)

	// CountClicksSince counts a link's clicks at or after the cutoff
	CountClicksSince(ctx context.Context, linkID int64, since time.Time) (int64, error)

	// RecentClicks retrieves a link's most recent clicks, newest first
	RecentClicks(ctx context.Context, linkID int64, limit int) ([]domain.Click, error)
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	// CreateUser persists a new account. Duplicate emails return
	// domain.ErrEmailTaken.
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetUserByEmail retrieves an account by email
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUser retrieves an account by ID
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// LogRepository defines the interface for request log persistence
type LogRepository interface {
	// InsertRequestLog stores one request log entry
	InsertRequestLog(ctx context.Context, entry *domain.RequestLog) error
}
