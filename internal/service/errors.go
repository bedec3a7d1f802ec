package service

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned for a missing or unknown session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired is returned for a token past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidRating is returned for a rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrInvalidStatus is returned for an unknown application status.
	ErrInvalidStatus = errors.New("invalid application status")
)
