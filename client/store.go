package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// TokenKind selects which bearer string to hand out: "id" for Cognito/REST
// authorizers, "access" for JWT authorizers and userinfo calls.
type TokenKind string

const (
	TokenKindID     TokenKind = "id"
	TokenKindAccess TokenKind = "access"
)

// StoredTokens is the cached credential bundle persisted between
// invocations. The wire names match the provider's token response.
type StoredTokens struct {
	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`  // seconds, as reported at acquisition
	ObtainedAt   int64  `json:"obtained_at,omitempty"` // unix seconds
}

// Token returns the bearer string for the requested kind.
func (t *StoredTokens) Token(kind TokenKind) string {
	if t == nil {
		return ""
	}
	if kind == TokenKindID {
		return t.IDToken
	}
	return t.AccessToken
}

// Fresh reports whether the bundle can still serve the requested kind:
// now < obtained_at + expires_in - skew.
func (t *StoredTokens) Fresh(kind TokenKind, now time.Time, skew time.Duration) bool {
	if t == nil || t.Token(kind) == "" {
		return false
	}
	return now.Unix() < t.ObtainedAt+t.ExpiresIn-int64(skew.Seconds())
}

// Store persists the token bundle between runs.
type Store interface {
	Load() (*StoredTokens, error)
	Save(*StoredTokens) error
}

// FileStore keeps the bundle as a single JSON file, overwritten wholesale on
// every update. A single local process is assumed; there is no file locking.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns the per-user cache location,
// ~/.peer2park/tokens.json.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".peer2park", "tokens.json"), nil
}

// Load reads the cached bundle. A missing or unreadable file yields
// (nil, nil): the cache simply cannot serve and acquisition starts over.
func (s *FileStore) Load() (*StoredTokens, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, nil
	}

	var tokens StoredTokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, nil
	}
	return &tokens, nil
}

// Save overwrites the cache file with the full bundle.
func (s *FileStore) Save(tokens *StoredTokens) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("cannot create token store directory: %w", err)
	}

	raw, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode tokens: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("cannot write token store: %w", err)
	}
	return nil
}
