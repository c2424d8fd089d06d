package spots

import "context"

type Repo interface {
	Put(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	// Delete removes the record with the given ID, returning ErrNotFound
	// when no such record exists.
	Delete(ctx context.Context, id string) error
}
