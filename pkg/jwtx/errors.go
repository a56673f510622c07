package jwtx

import "errors"

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")

	// ErrNoKey wraps whatever the KeySource returned when it could not
	// produce a key.
	ErrNoKey = errors.New("jwtx: signing key unavailable")
)
