package service

import "errors"

// Failure taxonomy of the authentication core. Every one of these surfaces
// over HTTP as 401 with the error text as the message body; the same text is
// mirrored onto the audit sink.
var (
	// Validation failures (no store or network access happened).
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordConfirm      = errors.New("passwords do not match")
	ErrEmailRequired        = errors.New("email is required")
	ErrMissingAuthorization = errors.New("authorization header required")

	// Conflicts.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")

	// Authentication failures.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrIncorrectCode      = errors.New("incorrect 2FA code")

	// Not found.
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidResetToken = errors.New("invalid reset token")

	// Catch-all for internal and upstream failures; details go to the log,
	// never to the caller.
	ErrUnauthorized = errors.New("unauthorized")

	// Role model.
	ErrProtectedRole = errors.New("cannot modify a protected system role")
)
