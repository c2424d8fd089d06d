package config

import (
	"fmt"
	"strings"
)

// AuthConfig describes the Cognito user pool the backend trusts and the app
// client used by the CLI token helper.
type AuthConfig interface {
	GetRegion() string
	GetUserPoolID() string
	GetClientID() string
	GetHostedDomain() string
	GetRedirectURL() string
	GetScopes() []string
	GetIssuerURL() string
	GetJWKSURL() string
	GetTestUsername() string
	GetTestPassword() string
	// AllowDevFallback gates the synthetic development identity in the
	// server-side credential resolver. It must never be enabled behind a
	// production gateway.
	AllowDevFallback() bool
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetRegion() string {
	return GetEnv("AWS_REGION", "us-east-2")
}

func (Auth) GetUserPoolID() string {
	return GetEnv("COGNITO_USER_POOL_ID", "")
}

func (Auth) GetClientID() string {
	return GetEnv("COGNITO_CLIENT_ID", "")
}

func (Auth) GetHostedDomain() string {
	return GetEnv("COGNITO_HOSTED_DOMAIN", "")
}

func (Auth) GetRedirectURL() string {
	return GetEnv("OAUTH_REDIRECT_URL", "http://localhost:3000/auth/callback")
}

func (Auth) GetScopes() []string {
	scopes := GetEnv("OAUTH_SCOPES", "openid email profile")
	return strings.Fields(scopes)
}

func (a Auth) GetIssuerURL() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", a.GetRegion(), a.GetUserPoolID())
}

func (a Auth) GetJWKSURL() string {
	return a.GetIssuerURL() + "/.well-known/jwks.json"
}

func (Auth) GetTestUsername() string {
	return GetEnv("TEST_USERNAME", "")
}

func (Auth) GetTestPassword() string {
	return GetEnv("TEST_PASSWORD", "")
}

func (Auth) AllowDevFallback() bool {
	return GetEnv("ALLOW_DEV_FALLBACK", "false") == "true"
}
