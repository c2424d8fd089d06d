package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/peer2park/backend/internal/utils"
	"github.com/peer2park/backend/token"
)

// ProviderUserInfo implements UserInfoFetcher against the identity
// provider's OIDC userinfo endpoint. Cognito serves GetUser-equivalent
// attributes there for any valid access token.
type ProviderUserInfo struct {
	provider *oidc.Provider
}

// NewProviderUserInfo discovers the provider rooted at issuerURL.
func NewProviderUserInfo(ctx context.Context, issuerURL string) (*ProviderUserInfo, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("provider discovery for %q: %w", issuerURL, err)
	}
	return &ProviderUserInfo{provider: provider}, nil
}

// Fetch exchanges an opaque access token for the identity attributes of its
// owner. A provider rejection (revoked or foreign token) is an ordinary
// error the resolver falls through on; only transport failures map to
// ErrProviderUnavailable.
func (p *ProviderUserInfo) Fetch(ctx context.Context, accessToken string) (*token.Claims, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := p.provider.UserInfo(ctx, source)
	if err != nil {
		if isTransportErr(err) {
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("userinfo rejected token: %w", err)
	}

	// Cognito reports the handle under "username" rather than the
	// cognito:username claim used in ID tokens.
	var attrs struct {
		Username      string `json:"username"`
		EmailVerified any    `json:"email_verified"`
	}
	_ = info.Claims(&attrs)

	emailVerified := utils.ToBool(attrs.EmailVerified)
	if emailVerified == nil && info.EmailVerified {
		emailVerified = utils.Ptr(true)
	}

	return &token.Claims{
		Subject:       info.Subject,
		Email:         info.Email,
		EmailVerified: emailVerified,
		Username:      attrs.Username,
		TokenUse:      "access",
	}, nil
}

func isTransportErr(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
