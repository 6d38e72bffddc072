package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shist-app/shist/pkg/cryptox"
)

// DefaultSessionTTL is the default lifetime for session access tokens.
// Short-lived for security - typical range is 15m to 24h for a mobile app
// that refreshes on foreground.
const DefaultSessionTTL = 24 * time.Hour

// Claims are session access-token claims. Keep changes additive to preserve
// compatibility with tokens already held by clients.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated user
	Username string `json:"username,omitempty"`

	// DisplayName is the display name for the user
	DisplayName string `json:"display_name,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a user session.
func NewSessionClaims(
	subject string,
	username, displayName string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username:    username,
		DisplayName: displayName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize128)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used before
// it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
