package service

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidFormat     = errors.New("invalid code format")
	ErrInvalidOrUsedCode = errors.New("invalid or already used code")
	ErrExhaustedKeyspace = errors.New("could not find an unused code within the retry budget")
	ErrStoreUnavailable  = errors.New("code store unavailable")
	ErrSecretUnavailable = errors.New("signing secret unavailable")
)
