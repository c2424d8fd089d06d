package token

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultKeyTTL is how long a fetched key set is served before refetching.
const DefaultKeyTTL = time.Hour

// KeyCache provides the identity provider's current signing keys without
// refetching on every request. It is an explicit, injectable object rather
// than package-level state so tests can control expiry deterministically.
//
// Concurrent callers during a cache miss may each trigger a fetch; the last
// writer wins. This is tolerated at the expected request volume.
type KeyCache struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client
	nowTime    func() time.Time

	mu        sync.Mutex
	keys      jwk.Set
	expiresAt time.Time
}

// KeyCacheOption configures a KeyCache.
type KeyCacheOption func(*KeyCache)

// WithKeyTTL overrides the cache time-to-live.
func WithKeyTTL(ttl time.Duration) KeyCacheOption {
	return func(c *KeyCache) {
		c.ttl = ttl
	}
}

// WithKeyCacheNowTime sets the clock function (primarily for testing).
func WithKeyCacheNowTime(nowFunc func() time.Time) KeyCacheOption {
	return func(c *KeyCache) {
		c.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used for JWKS fetches.
func WithHTTPClient(client *http.Client) KeyCacheOption {
	return func(c *KeyCache) {
		c.httpClient = client
	}
}

// NewKeyCache creates a cache for the JWKS document at jwksURL.
func NewKeyCache(jwksURL string, options ...KeyCacheOption) *KeyCache {
	c := &KeyCache{
		url:        jwksURL,
		ttl:        DefaultKeyTTL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Keys returns the cached key set while it is fresh, otherwise fetches the
// JWKS document and replaces the cache. A failed fetch is returned as
// ErrKeyFetchFailed; the stale set is never served in its place.
func (c *KeyCache) Keys(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	if c.keys != nil && c.nowTime().Before(c.expiresAt) {
		set := c.keys
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	set, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = set
	c.expiresAt = c.nowTime().Add(c.ttl)
	c.mu.Unlock()

	return set, nil
}

func (c *KeyCache) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: jwks endpoint returned %d", ErrKeyFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	return set, nil
}
