package token

import (
	"github.com/peer2park/backend/internal/utils"
)

// Claims is the normalized identity record produced by any credential
// resolution path. Instances are built fresh per resolution attempt and
// never mutated afterwards.
type Claims struct {
	Subject       string // "sub"; required, absence is an authentication failure
	Email         string
	EmailVerified *bool
	Username      string // provider-specific handle ("cognito:username")
	TokenUse      string // e.g. "id" or "access"
	ExpiresAt     int64  // unix seconds; zero when the claim is absent
	Issuer        string
}

// ClaimsFromPayload maps a decoded token payload onto the normalized Claims
// shape. It makes no trust decisions; unknown fields are ignored.
func ClaimsFromPayload(payload map[string]any) *Claims {
	c := &Claims{
		Subject:       stringClaim(payload, "sub"),
		Email:         stringClaim(payload, "email"),
		EmailVerified: utils.ToBool(payload["email_verified"]),
		Username:      stringClaim(payload, "cognito:username"),
		TokenUse:      stringClaim(payload, "token_use"),
		Issuer:        stringClaim(payload, "iss"),
	}
	if exp, ok := numericClaim(payload, "exp"); ok {
		c.ExpiresAt = int64(exp)
	}
	return c
}

func stringClaim(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func numericClaim(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
