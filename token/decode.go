package token

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Decode splits a compact three-segment token string into its header and
// payload objects without verifying the signature. It is pure: no network
// access, no trust judgement, deterministic for a given input.
//
// Numeric payload fields (e.g. "exp") come back as float64, which is what
// the JSON decoder produces.
func Decode(raw string) (header map[string]any, payload map[string]any, err error) {
	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}

	return parsed.Header, map[string]any(claims), nil
}
