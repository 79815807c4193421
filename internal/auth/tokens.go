package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linkforge/shortlink/internal/domain"
)

// TokenManager issues and verifies bearer tokens carrying an owner identity
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// Claims represents the JWT claims, including the owning user ID
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for the given user ID
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses a token string and extracts the user ID.
// Expired, malformed, or foreign-signed tokens all map to
// domain.ErrUnauthenticated; the caller never needs to distinguish.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthenticated
	}

	if claims.UserID == "" {
		return "", domain.ErrUnauthenticated
	}

	return claims.UserID, nil
}
