package client

import (
	"context"
	"fmt"
	"time"
)

// DefaultSkew is the freshness buffer subtracted from cached-token expiry.
const DefaultSkew = 60 * time.Second

// Authenticator performs the provider exchanges needed when the cache
// cannot serve a request.
type Authenticator interface {
	// Refresh exchanges a refresh token for a new bundle. The returned
	// bundle may omit the refresh token when the provider does not rotate.
	Refresh(ctx context.Context, refreshToken string) (*StoredTokens, error)
	// Login performs a full credential exchange: password-based for
	// automation, or interactive browser PKCE for human use.
	Login(ctx context.Context) (*StoredTokens, error)
}

// Resolver obtains a usable bearer token while minimizing interactive login
// prompts: fresh cache first, then refresh exchange, then full login. Every
// successful acquisition is persisted before it is returned.
type Resolver struct {
	store   Store
	auth    Authenticator
	skew    time.Duration
	nowTime func() time.Time
}

type ResolverOption func(*Resolver)

func WithSkew(skew time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.skew = skew
	}
}

func WithNowTime(nowFunc func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.nowTime = nowFunc
	}
}

func NewResolver(store Store, auth Authenticator, options ...ResolverOption) *Resolver {
	r := &Resolver{
		store:   store,
		auth:    auth,
		skew:    DefaultSkew,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// GetJWT returns a bearer token of the requested kind. Refresh and login
// failures are hard failures: there is no silent fallback to a stale token.
func (r *Resolver) GetJWT(ctx context.Context, kind TokenKind) (string, error) {
	cached, _ := r.store.Load()

	if cached.Fresh(kind, r.nowTime(), r.skew) {
		return cached.Token(kind), nil
	}

	if cached != nil && cached.RefreshToken != "" {
		refreshed, err := r.auth.Refresh(ctx, cached.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("refresh exchange failed: %w", err)
		}
		// The provider may not rotate refresh tokens; keep the old one.
		if refreshed.RefreshToken == "" {
			refreshed.RefreshToken = cached.RefreshToken
		}
		return r.persist(refreshed, kind)
	}

	fresh, err := r.auth.Login(ctx)
	if err != nil {
		return "", err
	}
	return r.persist(fresh, kind)
}

func (r *Resolver) persist(tokens *StoredTokens, kind TokenKind) (string, error) {
	tokens.ObtainedAt = r.nowTime().Unix()
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	if err := r.store.Save(tokens); err != nil {
		return "", fmt.Errorf("failed to persist tokens: %w", err)
	}
	return tokens.Token(kind), nil
}
