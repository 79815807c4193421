package domain

import (
	"time"
)

// ShortLink represents a shortened URL owned by a user
type ShortLink struct {
	ID          int64      `json:"id"`
	ShortKey    string     `json:"short_key"`
	TargetURL   string     `json:"target_url"`
	OwnerID     string     `json:"owner_id"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Click is one recorded resolution of a short key
type Click struct {
	Timestamp time.Time `json:"timestamp"`
	SourceIP  string    `json:"source_ip"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
}

// User represents an account that owns short links
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RequestLog is one entry accepted by the request log sink
type RequestLog struct {
	Method     string
	Path       string
	Status     int
	DurationMs int64
	SourceIP   string
	OwnerID    string
	Error      string
	Timestamp  time.Time
}

// CreateLinkRequest represents the request to create a short link
type CreateLinkRequest struct {
	TargetURL   string     `json:"target_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest represents a partial update of link metadata.
// Pointer fields distinguish "absent" from zero values. Fields not
// listed here are immutable through the update operation.
type UpdateLinkRequest struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

// LinkResponse is the ShortLink summary returned by the API
type LinkResponse struct {
	ID          int64      `json:"id"`
	ShortKey    string     `json:"short_key"`
	ShortURL    string     `json:"short_url"`
	TargetURL   string     `json:"target_url"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Pagination describes the position of a page within a listing
type Pagination struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// LinkPage is one page of an owner's links
type LinkPage struct {
	Links      []*ShortLink
	TotalCount int
	Page       int
	Limit      int
}

// LinkStats is the read-side analytics projection for a single link.
// The windowed counts are recomputed from click timestamps at call time,
// never stored.
type LinkStats struct {
	ShortKey         string    `json:"short_key"`
	TargetURL        string    `json:"target_url"`
	TotalClicks      int64     `json:"total_clicks"`
	ClicksLast7Days  int64     `json:"clicks_last_7_days"`
	ClicksLast30Days int64     `json:"clicks_last_30_days"`
	RecentClicks     []Click   `json:"recent_clicks"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// TopLink is one entry in the dashboard's top-performing list
type TopLink struct {
	ShortKey   string    `json:"short_key"`
	TargetURL  string    `json:"target_url"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// DashboardStats aggregates an owner's links for the dashboard view
type DashboardStats struct {
	TotalURLs   int       `json:"total_urls"`
	TotalClicks int64     `json:"total_clicks"`
	ActiveURLs  int       `json:"active_urls"`
	RecentURLs  int       `json:"recent_urls"`
	TopLinks    []TopLink `json:"top_links"`
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the request to exchange credentials for a token
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the bearer credential issued on login
type TokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
