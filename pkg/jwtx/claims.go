package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session TTL presets selectable by deployment profile.
const (
	StandardSessionTTL = 48 * time.Hour
	ExtendedSessionTTL = 7 * 24 * time.Hour
)

// Claims are the session-token claims. The set is deliberately closed:
// sub, jti, iat, exp and aud, nothing else is minted.
type Claims struct {
	jwt.RegisteredClaims
}

// NewSessionClaims binds a claimant to the code it redeemed. The code doubles
// as the token id.
func NewSessionClaims(subject, codeID, audience string, issuedAt, expiresAt time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        codeID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// ValidateAudience checks that expected is one of the token audiences.
func (c *Claims) ValidateAudience(expected string) error {
	if expected == "" || !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}

// ValidateExpiry rejects tokens at or after exp. A token without exp never
// validates.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateIdentity requires the subject and token id to be present.
func (c *Claims) ValidateIdentity() error {
	if c.Subject == "" || c.ID == "" {
		return ErrInvalidClaim
	}
	return nil
}
