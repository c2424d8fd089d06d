package auth

import "errors"

var (
	// ErrUnauthorized means no resolution path yielded a subject. Terminal,
	// surfaced to the caller as 401.
	ErrUnauthorized = errors.New("unauthorized: no credential path yielded a subject")

	// ErrProviderUnavailable is a transport-level failure talking to the
	// identity provider. Retryable by the caller, surfaced as 5xx.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)
