package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long the dev server's lobby tokens live.
const DefaultTokenTTL = 12 * time.Hour

// Claims are the lobby token claims. The remote service treats tokens as
// opaque; these fields only matter to whoever minted them.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
	Group    string `json:"group,omitempty"`
}

// NewClaims builds claims for subject valid from now for ttl.
func NewClaims(subject, username, group, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Group:    group,
	}
}

// ValidateExpiryAt ensures the token hasn't expired (exp) and isn't before nbf at now.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
