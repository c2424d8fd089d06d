package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ErrOAuthCallback is returned when the provider redirects the interactive
// login back with an error instead of an authorization code.
var ErrOAuthCallback = errors.New("oauth callback error")

// Config holds the provider coordinates used to mint tokens.
type Config struct {
	Region       string
	ClientID     string
	HostedDomain string // e.g. peer2park-dev.auth.us-east-2.amazoncognito.com
	RedirectURL  string
	Scopes       []string

	// Username/Password enable the non-interactive login used by test
	// automation. When unset, login opens a browser.
	Username string
	Password string
}

// CognitoAuthenticator implements Authenticator against a Cognito user pool:
// refresh and authorization-code exchanges go through the hosted domain's
// OAuth2 endpoints, password login through the InitiateAuth API.
type CognitoAuthenticator struct {
	cfg         Config
	httpClient  *http.Client
	openBrowser func(url string) error

	hostedBase  string // override for tests
	idpEndpoint string // override for tests
}

type AuthenticatorOption func(*CognitoAuthenticator)

func WithAuthHTTPClient(client *http.Client) AuthenticatorOption {
	return func(a *CognitoAuthenticator) {
		a.httpClient = client
	}
}

func WithBrowserOpener(open func(url string) error) AuthenticatorOption {
	return func(a *CognitoAuthenticator) {
		a.openBrowser = open
	}
}

// WithProviderEndpoints overrides the hosted-UI base URL and the identity
// provider API endpoint, primarily for tests.
func WithProviderEndpoints(hostedBase, idpEndpoint string) AuthenticatorOption {
	return func(a *CognitoAuthenticator) {
		a.hostedBase = hostedBase
		a.idpEndpoint = idpEndpoint
	}
}

func NewCognitoAuthenticator(cfg Config, options ...AuthenticatorOption) *CognitoAuthenticator {
	a := &CognitoAuthenticator{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		openBrowser: OpenBrowser,
		hostedBase:  "https://" + cfg.HostedDomain,
		idpEndpoint: fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", cfg.Region),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *CognitoAuthenticator) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    a.cfg.ClientID,
		RedirectURL: a.cfg.RedirectURL,
		Scopes:      a.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.hostedBase + "/oauth2/authorize",
			TokenURL: a.hostedBase + "/oauth2/token",
		},
	}
}

// Refresh exchanges a refresh token at the provider's token endpoint. HTTP
// errors from the endpoint are hard failures.
func (a *CognitoAuthenticator) Refresh(ctx context.Context, refreshToken string) (*StoredTokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	source := a.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	tok, err := source.Token()
	if err != nil {
		return nil, err
	}
	return storedFromOAuth2(tok), nil
}

// Login performs a full credential exchange: password-based when the config
// carries automation credentials, interactive PKCE otherwise.
func (a *CognitoAuthenticator) Login(ctx context.Context) (*StoredTokens, error) {
	if a.cfg.Username != "" && a.cfg.Password != "" {
		return a.passwordLogin(ctx)
	}
	return a.interactiveLogin(ctx)
}

// passwordLogin drives the user pool's USER_PASSWORD_AUTH flow. This is the
// InitiateAuth wire call: a single JSON POST with an X-Amz-Target header.
func (a *CognitoAuthenticator) passwordLogin(ctx context.Context) (*StoredTokens, error) {
	return a.initiateAuth(ctx, "USER_PASSWORD_AUTH", map[string]string{
		"USERNAME": a.cfg.Username,
		"PASSWORD": a.cfg.Password,
	})
}

func (a *CognitoAuthenticator) initiateAuth(ctx context.Context, flow string, params map[string]string) (*StoredTokens, error) {
	payload := map[string]any{
		"AuthFlow":       flow,
		"ClientId":       a.cfg.ClientID,
		"AuthParameters": params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.idpEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", "AWSCognitoIdentityProviderService.InitiateAuth")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initiate auth request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("initiate auth returned %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		AuthenticationResult *struct {
			IdToken      string `json:"IdToken"`
			AccessToken  string `json:"AccessToken"`
			RefreshToken string `json:"RefreshToken"`
			TokenType    string `json:"TokenType"`
			ExpiresIn    int64  `json:"ExpiresIn"`
		} `json:"AuthenticationResult"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("cannot decode initiate auth response: %w", err)
	}
	if result.AuthenticationResult == nil {
		return nil, errors.New("auth failed: no AuthenticationResult")
	}

	ar := result.AuthenticationResult
	tokens := &StoredTokens{
		IDToken:      ar.IdToken,
		AccessToken:  ar.AccessToken,
		RefreshToken: ar.RefreshToken,
		TokenType:    ar.TokenType,
		ExpiresIn:    ar.ExpiresIn,
	}
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	if tokens.ExpiresIn == 0 {
		tokens.ExpiresIn = 3600
	}
	return tokens, nil
}

func storedFromOAuth2(tok *oauth2.Token) *StoredTokens {
	tokens := &StoredTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    3600,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		tokens.IDToken = idToken
	}
	if expiresIn, ok := tok.Extra("expires_in").(float64); ok && expiresIn > 0 {
		tokens.ExpiresIn = int64(expiresIn)
	} else if !tok.Expiry.IsZero() {
		if secs := int64(time.Until(tok.Expiry).Seconds()); secs > 0 {
			tokens.ExpiresIn = secs
		}
	}
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	return tokens
}
