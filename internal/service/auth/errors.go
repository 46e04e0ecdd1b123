package auth

import "errors"

var (
	// ErrInvalidToken indicates the token is malformed, has a bad
	// signature, or otherwise fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidPassphrase indicates the presented passphrase does not
	// match the configured hash.
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)
