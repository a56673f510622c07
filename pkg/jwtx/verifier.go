package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a session token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// HS256Verifier checks signature, expiry and audience. It never looks at the
// code store, so a token stays valid until exp regardless of what happens to
// the record behind it.
type HS256Verifier struct {
	keys     KeySource
	audience string
	now      func() time.Time
}

func NewHS256Verifier(keys KeySource, audience string) *HS256Verifier {
	return &HS256Verifier{keys: keys, audience: audience, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (v *HS256Verifier) WithClock(now func() time.Time) *HS256Verifier {
	v.now = now
	return v
}

// Verify returns ErrMalformed, ErrInvalidToken, ErrInvalidClaim, ErrExpired
// or ErrAudience for a bad token, and an ErrNoKey wrap when the key itself
// could not be loaded.
func (v *HS256Verifier) Verify(ctx context.Context, tokenStr string) (Claims, error) {
	key, err := v.keys.Key(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrNoKey, err)
	}
	if len(key) == 0 {
		return Claims{}, ErrNoKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIdentity(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.audience); err != nil {
		return Claims{}, err
	}
	// The parser already checked exp; this is the second, independent check.
	if err := claims.ValidateExpiry(v.now()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}
