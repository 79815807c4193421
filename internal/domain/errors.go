package domain

import "errors"

// Sentinel errors shared across the repository, service, and transport
// layers. Handlers map these onto HTTP status codes.
var (
	// ErrNotFound is returned for unknown short keys and for keys owned
	// by a different account, so the API never confirms that a foreign
	// alias exists.
	ErrNotFound = errors.New("short link not found")

	// ErrLinkGone is returned when a link exists but is inactive or past
	// its expiry. Resolution must not mutate click state in this case.
	ErrLinkGone = errors.New("short link is inactive or expired")

	// ErrAliasTaken is returned when a requested short key already exists.
	ErrAliasTaken = errors.New("alias already in use")

	// ErrInvalidTarget is returned when the target URL fails validation.
	ErrInvalidTarget = errors.New("invalid target URL")

	// ErrUnauthenticated is returned when no valid caller identity exists.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrEmailTaken is returned when registering an already-known email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
