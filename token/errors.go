package token

import "errors"

// Validation failures are expected, recoverable outcomes: callers branch on
// them rather than treating them as faults.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrIssuerMismatch = errors.New("issuer mismatch")
	ErrKeyFetchFailed = errors.New("failed to fetch signing keys")
)
