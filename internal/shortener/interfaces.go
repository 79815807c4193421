package shortener

import (
	"context"
)

// Generator defines the interface for generating short keys
type Generator interface {
	// GenerateShortKey generates a new candidate short key. Uniqueness is
	// enforced by the storage layer's constraint, not by the generator;
	// callers retry on conflict.
	GenerateShortKey(ctx context.Context) (string, error)

	// Type returns the type identifier of the generator
	Type() string
}

// Config holds configuration for short key generators
type Config struct {
	KeyLength int `json:"key_length"` // Length of generated keys
}

// DefaultKeyLength is the key length used when none is configured.
// 62^7 candidate keys keep the collision-retry path cold.
const DefaultKeyLength = 7

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		KeyLength: DefaultKeyLength,
	}
}
