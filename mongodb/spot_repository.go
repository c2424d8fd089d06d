package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peer2park/backend/spots"
)

const spotsCollection = "spots"

var _ spots.Repo = (*SpotRepository)(nil)

// SpotRepository stores parking-spot reports in MongoDB.
type SpotRepository struct {
	collection *mongo.Collection
}

func NewSpotRepository(db *mongo.Database) *SpotRepository {
	return &SpotRepository{
		collection: db.Collection(spotsCollection),
	}
}

func (r *SpotRepository) Put(ctx context.Context, record spots.Record) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert spot %q: %w", record.ID, err)
	}
	return nil
}

func (r *SpotRepository) List(ctx context.Context) ([]spots.Record, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	defer cursor.Close(ctx)

	var records []spots.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode spots: %w", err)
	}
	return records, nil
}

func (r *SpotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete spot %q: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return spots.ErrNotFound
	}
	return nil
}
