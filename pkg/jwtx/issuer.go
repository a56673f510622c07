package jwtx

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySource yields the shared HMAC key. Implementations are expected to cache.
type KeySource interface {
	Key(ctx context.Context) ([]byte, error)
}

// KeyFunc adapts a function to KeySource.
type KeyFunc func(ctx context.Context) ([]byte, error)

func (f KeyFunc) Key(ctx context.Context) ([]byte, error) { return f(ctx) }

// Issuer mints HS256 session tokens for a single audience.
type Issuer struct {
	keys     KeySource
	audience string
}

func NewIssuer(keys KeySource, audience string) *Issuer {
	return &Issuer{keys: keys, audience: audience}
}

func (i *Issuer) Audience() string { return i.audience }

// Ready loads the signing key without minting anything.
func (i *Issuer) Ready(ctx context.Context) error {
	_, err := i.key(ctx)
	return err
}

// Mint signs a token for subject, identified by codeID, valid in [issuedAt, expiresAt).
func (i *Issuer) Mint(ctx context.Context, subject, codeID string, issuedAt, expiresAt time.Time) (string, error) {
	key, err := i.key(ctx)
	if err != nil {
		return "", err
	}

	claims := NewSessionClaims(subject, codeID, i.audience, issuedAt, expiresAt)
	if err := claims.ValidateIdentity(); err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func (i *Issuer) key(ctx context.Context) ([]byte, error) {
	key, err := i.keys.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoKey, err)
	}
	// Never sign with an empty key.
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return key, nil
}
