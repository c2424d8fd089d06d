package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// interactiveLogin runs the authorization-code-with-PKCE flow: a browser is
// sent to the provider's hosted authorization page and a short-lived local
// listener on the redirect URI captures the returned code. The listener
// serves exactly one completed or errored callback.
func (a *CognitoAuthenticator) interactiveLogin(ctx context.Context) (*StoredTokens, error) {
	cfg := a.oauthConfig()
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	authURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	code, err := a.awaitCallback(ctx, state, authURL)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return storedFromOAuth2(tok), nil
}

type callbackResult struct {
	code string
	err  error
}

// awaitCallback binds a listener to the configured redirect URI, opens the
// browser, and waits for the provider to redirect back with either a code
// or an error parameter.
func (a *CognitoAuthenticator) awaitCallback(ctx context.Context, state, authURL string) (string, error) {
	redirect, err := url.Parse(a.cfg.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL %q: %w", a.cfg.RedirectURL, err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("cannot bind callback listener on %q: %w", redirect.Host, err)
	}

	results := make(chan callbackResult, 1)
	var once sync.Once
	deliver := func(res callbackResult) {
		once.Do(func() { results <- res })
	}

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != redirect.Path {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		if errParam := query.Get("error"); errParam != "" {
			http.Error(w, "OAuth error: "+errParam, http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("%w: %s (%s)", ErrOAuthCallback, errParam, query.Get("error_description"))})
			return
		}

		code := query.Get("code")
		if code == "" {
			http.NotFound(w, r)
			return
		}
		if query.Get("state") != state {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("%w: state mismatch", ErrOAuthCallback)})
			return
		}

		fmt.Fprint(w, "Login complete. You can close this tab.")
		deliver(callbackResult{code: code})
	})}

	go server.Serve(listener) //nolint:errcheck // closed below
	defer server.Close()

	if err := a.openBrowser(authURL); err != nil {
		return "", fmt.Errorf("cannot open browser: %w", err)
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
