package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peer2park/backend/auth"
	"github.com/peer2park/backend/token"
)

// spyVerifier records calls and replays a scripted outcome.
type spyVerifier struct {
	claims *token.Claims
	err    error
	calls  int
	lastIn string
}

func (s *spyVerifier) Verify(_ context.Context, raw string) (*token.Claims, error) {
	s.calls++
	s.lastIn = raw
	return s.claims, s.err
}

// spyUserInfo records calls and replays a scripted outcome.
type spyUserInfo struct {
	claims *token.Claims
	err    error
	calls  int
}

func (s *spyUserInfo) Fetch(_ context.Context, _ string) (*token.Claims, error) {
	s.calls++
	return s.claims, s.err
}

func validClaims() *token.Claims {
	return &token.Claims{
		Subject:  "user-123",
		Email:    "alice@example.com",
		Username: "alice",
		TokenUse: "id",
	}
}

// TestResolve_GatewayClaimsWin tests that authorizer-attached claims short-
// circuit every other path
func TestResolve_GatewayClaimsWin(t *testing.T) {
	verifier := &spyVerifier{claims: validClaims()}
	userInfo := &spyUserInfo{claims: validClaims()}
	resolver := auth.NewResolver(verifier, userInfo)

	claims, err := resolver.Resolve(context.Background(), &auth.Request{
		GatewayClaims: map[string]any{
			"sub":   "gateway-user",
			"email": "gw@example.com",
		},
		Authorization: "Bearer some.other.token",
	})

	require.NoError(t, err)
	require.Equal(t, "gateway-user", claims.Subject)
	require.Equal(t, "gw@example.com", claims.Email)
	require.Zero(t, verifier.calls, "gateway claims must not trigger verification")
	require.Zero(t, userInfo.calls)
}

// TestResolve_GatewayClaimsMissingSub tests fallthrough when the gateway
// payload has no subject
func TestResolve_GatewayClaimsMissingSub(t *testing.T) {
	verifier := &spyVerifier{claims: validClaims()}
	resolver := auth.NewResolver(verifier, nil)

	claims, err := resolver.Resolve(context.Background(), &auth.Request{
		GatewayClaims: map[string]any{"email": "gw@example.com"},
		Authorization: "Bearer header.payload.sig",
	})

	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject, "should fall through to bearer verification")
	require.Equal(t, 1, verifier.calls)
}

// TestResolve_BearerVerify tests the manual verification path
func TestResolve_BearerVerify(t *testing.T) {
	t.Run("valid bearer token", func(t *testing.T) {
		verifier := &spyVerifier{claims: validClaims()}
		resolver := auth.NewResolver(verifier, nil)

		claims, err := resolver.Resolve(context.Background(), &auth.Request{
			Authorization: "Bearer header.payload.sig",
		})

		require.NoError(t, err)
		require.Equal(t, "user-123", claims.Subject)
		require.Equal(t, "header.payload.sig", verifier.lastIn)
	})

	t.Run("case-insensitive scheme", func(t *testing.T) {
		verifier := &spyVerifier{claims: validClaims()}
		resolver := auth.NewResolver(verifier, nil)

		_, err := resolver.Resolve(context.Background(), &auth.Request{
			Authorization: "bearer header.payload.sig",
		})

		require.NoError(t, err)
		require.Equal(t, 1, verifier.calls)
	})

	t.Run("non-bearer scheme is ignored", func(t *testing.T) {
		verifier := &spyVerifier{claims: validClaims()}
		resolver := auth.NewResolver(verifier, nil)

		_, err := resolver.Resolve(context.Background(), &auth.Request{
			Authorization: "Basic dXNlcjpwYXNz",
		})

		require.ErrorIs(t, err, auth.ErrUnauthorized)
		require.Zero(t, verifier.calls)
	})
}

// TestResolve_IntrospectionFallback tests that a token rejected by manual
// verification is retried against provider introspection
func TestResolve_IntrospectionFallback(t *testing.T) {
	verifier := &spyVerifier{err: token.ErrMalformedToken}
	userInfo := &spyUserInfo{claims: &token.Claims{Subject: "user-123", TokenUse: "access"}}
	resolver := auth.NewResolver(verifier, userInfo)

	claims, err := resolver.Resolve(context.Background(), &auth.Request{
		Authorization: "Bearer opaque-access-token",
	})

	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "access", claims.TokenUse)
	require.Equal(t, 1, verifier.calls)
	require.Equal(t, 1, userInfo.calls)
}

// TestResolve_AllPathsReject tests the terminal ErrUnauthorized
func TestResolve_AllPathsReject(t *testing.T) {
	verifier := &spyVerifier{err: token.ErrTokenExpired}
	userInfo := &spyUserInfo{err: errors.New("userinfo rejected token")}
	resolver := auth.NewResolver(verifier, userInfo)

	_, err := resolver.Resolve(context.Background(), &auth.Request{
		Authorization: "Bearer expired.token.sig",
	})

	require.ErrorIs(t, err, auth.ErrUnauthorized)
}

// TestResolve_ProviderUnavailableAborts tests that transport failures stop
// the chain instead of degrading to unauthorized
func TestResolve_ProviderUnavailableAborts(t *testing.T) {
	t.Run("key fetch failure during verification", func(t *testing.T) {
		verifier := &spyVerifier{err: token.ErrKeyFetchFailed}
		userInfo := &spyUserInfo{claims: validClaims()}
		resolver := auth.NewResolver(verifier, userInfo)

		_, err := resolver.Resolve(context.Background(), &auth.Request{
			Authorization: "Bearer header.payload.sig",
		})

		require.ErrorIs(t, err, auth.ErrProviderUnavailable)
		require.ErrorIs(t, err, token.ErrKeyFetchFailed)
		require.Zero(t, userInfo.calls, "introspection must not run after a transport failure")
	})

	t.Run("introspection transport failure", func(t *testing.T) {
		verifier := &spyVerifier{err: token.ErrMalformedToken}
		userInfo := &spyUserInfo{err: auth.ErrProviderUnavailable}
		resolver := auth.NewResolver(verifier, userInfo)

		_, err := resolver.Resolve(context.Background(), &auth.Request{
			Authorization: "Bearer opaque-access-token",
		})

		require.ErrorIs(t, err, auth.ErrProviderUnavailable)
		require.NotErrorIs(t, err, auth.ErrUnauthorized)
	})
}

// TestResolve_NilUserInfoSkipsIntrospection tests resolvers wired without a
// provider introspection client
func TestResolve_NilUserInfoSkipsIntrospection(t *testing.T) {
	verifier := &spyVerifier{err: token.ErrMalformedToken}
	resolver := auth.NewResolver(verifier, nil)

	_, err := resolver.Resolve(context.Background(), &auth.Request{
		Authorization: "Bearer opaque-access-token",
	})

	require.ErrorIs(t, err, auth.ErrUnauthorized)
}

// TestResolve_DirectInvokeBodyToken tests token extraction from the body of
// a direct invocation
func TestResolve_DirectInvokeBodyToken(t *testing.T) {
	verifier := &spyVerifier{claims: validClaims()}
	resolver := auth.NewResolver(verifier, nil)

	claims, err := resolver.Resolve(context.Background(), &auth.Request{
		DirectInvoke: true,
		Body:         []byte(`{"token":"body.jwt.sig"}`),
	})

	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "body.jwt.sig", verifier.lastIn)
}

// TestResolve_DevFallback tests the synthetic development identity gating
func TestResolve_DevFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("enabled, direct invoke, no credentials", func(t *testing.T) {
		resolver := auth.NewResolver(&spyVerifier{}, nil,
			auth.WithDevFallback(true),
			auth.WithNowTime(func() time.Time { return now }),
		)

		claims, err := resolver.Resolve(context.Background(), &auth.Request{DirectInvoke: true})

		require.NoError(t, err)
		require.Equal(t, "dev-user-1748779200", claims.Subject)
	})

	t.Run("disabled", func(t *testing.T) {
		resolver := auth.NewResolver(&spyVerifier{}, nil)

		_, err := resolver.Resolve(context.Background(), &auth.Request{DirectInvoke: true})

		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("enabled but credentials present", func(t *testing.T) {
		verifier := &spyVerifier{err: token.ErrTokenExpired}
		resolver := auth.NewResolver(verifier, nil, auth.WithDevFallback(true))

		_, err := resolver.Resolve(context.Background(), &auth.Request{
			DirectInvoke:  true,
			Authorization: "Bearer expired.token.sig",
		})

		require.ErrorIs(t, err, auth.ErrUnauthorized, "fallback must not mask a failed credential")
	})

	t.Run("enabled but not a direct invocation", func(t *testing.T) {
		resolver := auth.NewResolver(&spyVerifier{}, nil, auth.WithDevFallback(true))

		_, err := resolver.Resolve(context.Background(), &auth.Request{})

		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

// TestResolve_EmptyRequest tests that a bare request resolves to unauthorized
func TestResolve_EmptyRequest(t *testing.T) {
	verifier := &spyVerifier{claims: validClaims()}
	resolver := auth.NewResolver(verifier, &spyUserInfo{claims: validClaims()})

	_, err := resolver.Resolve(context.Background(), &auth.Request{})

	require.ErrorIs(t, err, auth.ErrUnauthorized)
	require.Zero(t, verifier.calls)
}
