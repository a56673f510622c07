// Package secretx loads the service signing secret from its configured
// source and turns it into a process-wide, read-only HMAC key.
package secretx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrUnavailable is returned whenever the key cannot be produced. Callers
	// must fail closed on it.
	ErrUnavailable = errors.New("secretx: signing secret unavailable")

	ErrEmpty    = errors.New("secretx: secret is empty")
	ErrTooShort = errors.New("secretx: secret is too short")
)

// Provider fetches the raw secret material.
type Provider interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) ([]byte, error)

func (f ProviderFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

// EnvProvider reads the secret from an environment variable.
type EnvProvider struct {
	Var string
}

func (p EnvProvider) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := os.LookupEnv(p.Var)
	if !ok || v == "" {
		return nil, fmt.Errorf("%w: $%s not set", ErrEmpty, p.Var)
	}
	return []byte(v), nil
}

// FileProvider reads the secret from a file, typically a mounted secret
// volume. Surrounding whitespace is stripped.
type FileProvider struct {
	Path string
}

func (p FileProvider) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Clean(p.Path))
	if err != nil {
		return nil, fmt.Errorf("secretx: read %s: %w", p.Path, err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, p.Path)
	}
	return b, nil
}

// Static returns a provider that always yields secret. Used by tests and the
// operator CLI.
func Static(secret []byte) Provider {
	return ProviderFunc(func(context.Context) ([]byte, error) {
		if len(secret) == 0 {
			return nil, ErrEmpty
		}
		return secret, nil
	})
}
