package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/peer2park/backend/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory user store implementing the conditional-merge
// contract, for tests and local development.
type FakeUserRepo struct {
	records map[string]*users.Record
	lock    sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		records: make(map[string]*users.Record),
	}
}

func (ur *FakeUserRepo) Merge(_ context.Context, id users.Identity, upd users.ProfileUpdate, now time.Time) (*users.Record, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	record, ok := ur.records[id.Subject]
	if !ok {
		record = &users.Record{
			UserID:          id.Subject,
			Email:           id.Email,
			EmailVerified:   id.EmailVerified,
			CognitoUsername: id.Username,
			TokenUse:        id.TokenUse,
			CreatedAt:       now,
		}
		ur.records[id.Subject] = record
	}

	if upd.DisplayName != nil {
		record.DisplayName = *upd.DisplayName
	}
	if upd.Profile != nil {
		record.Profile = upd.Profile
	}
	record.UpdatedAt = now

	copied := *record
	return &copied, nil
}

// Get returns the stored record for a subject, or nil when absent.
func (ur *FakeUserRepo) Get(subject string) *users.Record {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	record, ok := ur.records[subject]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}
