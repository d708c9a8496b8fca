package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// subjects that no longer exist, so callers cannot probe which
	// accounts are real.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrMalformed indicates a token that cannot be parsed or is missing
	// required claims.
	ErrMalformed = errors.New("auth: malformed token")

	// ErrInvalidSignature indicates a token signed with a different key or
	// tampered with after signing.
	ErrInvalidSignature = errors.New("auth: invalid token signature")

	// ErrExpired indicates a well-formed, correctly signed token whose
	// expiry has passed.
	ErrExpired = errors.New("auth: token expired")

	// ErrForbidden indicates an authenticated subject whose current roles
	// do not intersect the operation's allowed roles.
	ErrForbidden = errors.New("auth: forbidden")

	ErrNotFound = errors.New("auth: not found")
	ErrConflict = errors.New("auth: already exists")

	ErrInvalidInput = errors.New("auth: invalid input")
)
