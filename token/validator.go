package token

import (
	"fmt"
	"time"
)

// DefaultSkew is the clock-drift tolerance subtracted from expiry checks.
const DefaultSkew = 60 * time.Second

// Validator decides whether a decoded payload represents a currently-valid,
// correctly-issued credential. It does not verify signatures; see Verifier.
type Validator struct {
	issuer  string // expected issuer, empty disables the check
	skew    time.Duration
	nowTime func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorNowTime sets the clock function (primarily for testing).
func WithValidatorNowTime(nowFunc func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.nowTime = nowFunc
	}
}

// WithSkew overrides the default clock-skew tolerance.
func WithSkew(skew time.Duration) ValidatorOption {
	return func(v *Validator) {
		v.skew = skew
	}
}

// NewValidator creates a Validator expecting the given issuer. An empty
// issuer disables the issuer check.
func NewValidator(expectedIssuer string, options ...ValidatorOption) *Validator {
	v := &Validator{
		issuer:  expectedIssuer,
		skew:    DefaultSkew,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Validate applies expiry and issuer checks to a decoded payload, in order,
// short-circuiting on the first failure. Invalid tokens are an expected
// outcome and surface as typed errors, never panics.
func (v *Validator) Validate(payload map[string]any) error {
	exp, ok := numericClaim(payload, "exp")
	if !ok {
		return fmt.Errorf("%w: missing exp claim", ErrTokenExpired)
	}
	if int64(exp) <= v.nowTime().Add(v.skew).Unix() {
		return fmt.Errorf("%w: exp %d", ErrTokenExpired, int64(exp))
	}

	if v.issuer != "" {
		iss := stringClaim(payload, "iss")
		if iss != v.issuer {
			return fmt.Errorf("%w: got %q want %q", ErrIssuerMismatch, iss, v.issuer)
		}
	}

	return nil
}
