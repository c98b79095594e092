package auth

import "errors"

// Client-recoverable failures. Handlers map these to stable, generic
// responses; anything else is treated as an internal error and is never
// shown to the client in detail.
var (
	// Validation failures (bad registration input).
	ErrDuplicateEmail   = errors.New("duplicate-email")
	ErrTermsNotAccepted = errors.New("terms-not-accepted")

	// Authentication failures. ErrInvalidCredentials deliberately covers
	// both "unknown email" and "wrong password" so neither leaks which
	// emails are registered.
	ErrInvalidCredentials     = errors.New("invalid-credentials")
	ErrInvalidCurrentPassword = errors.New("invalid-current-password")
	ErrUnauthenticated        = errors.New("unauthenticated")

	// Authorization failure (insufficient role).
	ErrForbidden = errors.New("forbidden")
)

// ErrMalformedCredential signals a stored hash that cannot be parsed. This is
// a data-integrity problem, not a wrong password: it must surface as an
// internal error, never as invalid credentials.
var ErrMalformedCredential = errors.New("malformed stored credential")
