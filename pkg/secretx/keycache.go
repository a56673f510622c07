package secretx

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinSecretLength is the minimum accepted secret size in bytes.
	MinSecretLength = 32

	// KeyLength is the size of the derived HMAC-SHA256 key.
	KeyLength = 32
)

// KeyCache derives the signing key once and serves it read-only afterwards.
// A failed load is not cached, so the next caller retries.
type KeyCache struct {
	provider Provider
	info     []byte

	key  atomic.Pointer[[]byte]
	lock chan struct{}
}

// NewKeyCache returns a lazily initialised cache. info binds the derived key
// to its purpose (usually the app tag) so the same secret can back several
// deployments without producing interchangeable tokens.
func NewKeyCache(p Provider, info string) *KeyCache {
	return &KeyCache{
		provider: p,
		info:     []byte(info),
		lock:     make(chan struct{}, 1),
	}
}

// Key returns the derived key, loading it on first use. Every failure,
// including ctx expiring while waiting for another loader, wraps
// ErrUnavailable.
func (c *KeyCache) Key(ctx context.Context) ([]byte, error) {
	if k := c.key.Load(); k != nil {
		return *k, nil
	}

	select {
	case c.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
	defer func() { <-c.lock }()

	// Someone else may have loaded it while we waited.
	if k := c.key.Load(); k != nil {
		return *k, nil
	}

	secret, err := c.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: %w: got %d bytes, need %d", ErrUnavailable, ErrTooShort, len(secret), MinSecretLength)
	}

	key := make([]byte, KeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, c.info), key); err != nil {
		return nil, fmt.Errorf("%w: derive key: %w", ErrUnavailable, err)
	}

	c.key.Store(&key)
	return key, nil
}

// Ready reports whether the key has been loaded.
func (c *KeyCache) Ready() bool {
	return c.key.Load() != nil
}
