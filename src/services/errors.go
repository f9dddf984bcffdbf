package services

import "errors"

// Sentinel errors for explicit error handling. Callers distinguish
// failure categories with errors.Is() instead of string matching.

var (
	// ErrInvalidCredentials covers both unknown-username and
	// wrong-password so the two are indistinguishable to clients.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is the one credential failure that is
	// deliberately distinguishable.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrSessionExpired indicates the session token exists but is past
	// its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionNotFound indicates no session matches the token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmailExists indicates the email address is already registered.
	ErrEmailExists = errors.New("email already registered")

	// ErrTokenInvalid indicates the verification token is unknown.
	ErrTokenInvalid = errors.New("invalid verification token")

	// ErrTokenExpired indicates the verification token is older than
	// its 24-hour window.
	ErrTokenExpired = errors.New("verification token expired")

	// ErrTokenUsed indicates the verification token was already spent.
	ErrTokenUsed = errors.New("verification token already used")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionNotActive indicates an attempt to store rendered
	// payloads on a version that is not the document's active version.
	ErrVersionNotActive = errors.New("version is not the document's active version")
)
