package users

import (
	"context"
	"time"
)

// Identity carries the claim-derived fields merged only on first write.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified *bool
	Username      string
	TokenUse      string
}

// ProfileUpdate carries the client-updatable fields overwritten on every
// write when supplied.
type ProfileUpdate struct {
	DisplayName *string
	Profile     map[string]any
}

// Repo is the user store contract: a single conditional merge keyed by the
// identity subject. Identity fields and createdAt are set only when absent;
// update fields overwrite unconditionally; updatedAt always refreshes.
type Repo interface {
	Merge(ctx context.Context, id Identity, upd ProfileUpdate, now time.Time) (*Record, error)
}
