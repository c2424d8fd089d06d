package token

import (
	"context"
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Verifier performs full credential verification: cryptographic signature
// against the provider's published keys, then expiry and issuer checks.
type Verifier struct {
	keys      *KeyCache
	validator *Validator
}

// NewVerifier combines a key cache and a claims validator.
func NewVerifier(keys *KeyCache, validator *Validator) *Verifier {
	return &Verifier{
		keys:      keys,
		validator: validator,
	}
}

// Verify checks the token's signature against the cached JWKS and validates
// its claims, returning normalized Claims on success.
//
// A signature that does not verify surfaces as ErrMalformedToken: the string
// is not a trustable token, whatever its shape. Key-fetch problems surface
// as ErrKeyFetchFailed and must not be treated as a token defect.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	set, err := v.keys.Keys(ctx)
	if err != nil {
		return nil, err
	}

	parser := jwtlib.NewParser(jwtlib.WithoutClaimsValidation())
	parsed, err := parser.Parse(raw, keyfuncFor(set))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}
	payload := map[string]any(claims)

	if err := v.validator.Validate(payload); err != nil {
		return nil, err
	}

	return ClaimsFromPayload(payload), nil
}

// keyfuncFor resolves the verification key by the token header's kid.
func keyfuncFor(set jwk.Set) jwtlib.Keyfunc {
	return func(t *jwtlib.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		key, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("no signing key for kid %q", kid)
		}
		var pub any
		if err := key.Raw(&pub); err != nil {
			return nil, fmt.Errorf("unusable signing key %q: %w", kid, err)
		}
		return pub, nil
	}
}
