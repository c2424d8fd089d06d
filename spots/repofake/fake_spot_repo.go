package fakespotrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/peer2park/backend/spots"
)

var _ spots.Repo = (*FakeSpotRepo)(nil)

// FakeSpotRepo is an in-memory spot store for tests and local development.
type FakeSpotRepo struct {
	records map[string]spots.Record
	lock    sync.RWMutex
}

func NewFakeSpotRepo() *FakeSpotRepo {
	return &FakeSpotRepo{
		records: make(map[string]spots.Record),
	}
}

func (sr *FakeSpotRepo) Put(_ context.Context, record spots.Record) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.records[record.ID] = record
	return nil
}

func (sr *FakeSpotRepo) List(_ context.Context) ([]spots.Record, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	out := make([]spots.Record, 0, len(sr.records))
	for _, record := range sr.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (sr *FakeSpotRepo) Delete(_ context.Context, id string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.records[id]; !ok {
		return spots.ErrNotFound
	}
	delete(sr.records, id)
	return nil
}
