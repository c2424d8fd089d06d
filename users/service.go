package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peer2park/backend/token"
)

var (
	ErrInvalidBody      = errors.New("invalid JSON in request body")
	ErrMissingSubject   = errors.New("claims missing subject")
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// Service merges resolved claims and caller-supplied profile fields into the
// user store.
type Service struct {
	repo    Repo
	nowTime func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNowTime sets the clock function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService creates the upsert service over the given repository.
func NewService(repo Repo, options ...ServiceOption) *Service {
	s := &Service{
		repo:    repo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Upsert validates the claims and the optional request body, then issues one
// conditional merge against the store. The store is never touched when the
// body fails to parse.
func (s *Service) Upsert(ctx context.Context, claims *token.Claims, rawBody []byte) (*Record, error) {
	if claims == nil || claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	upd, err := ParseBody(rawBody)
	if err != nil {
		return nil, err
	}

	id := Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Username:      claims.Username,
		TokenUse:      claims.TokenUse,
	}

	record, err := s.repo.Merge(ctx, id, upd, s.nowTime())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return record, nil
}

// ParseBody extracts the whitelisted updatable fields from a request body.
// Identity fields are never trusted from the client; anything outside the
// whitelist is ignored. An empty body is valid and means "no updates".
func ParseBody(raw []byte) (ProfileUpdate, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ProfileUpdate{}, nil
	}

	var body struct {
		DisplayName *string        `json:"displayName"`
		Profile     map[string]any `json:"profile"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ProfileUpdate{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	upd := ProfileUpdate{Profile: body.Profile}
	if body.DisplayName != nil {
		trimmed := strings.TrimSpace(*body.DisplayName)
		upd.DisplayName = &trimmed
	}
	return upd, nil
}
