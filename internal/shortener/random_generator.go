package shortener

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Base62 characters: 0-9, a-z, A-Z (case sensitive)
const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomGenerator generates short keys as fixed-length random base62 strings
type RandomGenerator struct {
	keyLength int
}

// NewRandomGenerator creates a new random base62 generator
func NewRandomGenerator(config Config) (*RandomGenerator, error) {
	length := config.KeyLength
	if length == 0 {
		length = DefaultKeyLength
	}
	if length < 4 || length > 32 {
		return nil, fmt.Errorf("key length must be between 4 and 32, got: %d", length)
	}

	return &RandomGenerator{keyLength: length}, nil
}

// GenerateShortKey draws a random base62 string of the configured length
func (g *RandomGenerator) GenerateShortKey(ctx context.Context) (string, error) {
	key := make([]byte, g.keyLength)
	max := big.NewInt(int64(len(base62Chars)))

	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random index: %w", err)
		}
		key[i] = base62Chars[n.Int64()]
	}

	return string(key), nil
}

// Type returns the generator type
func (g *RandomGenerator) Type() string {
	return "random"
}

// Ensure RandomGenerator implements Generator interface
var _ Generator = (*RandomGenerator)(nil)
