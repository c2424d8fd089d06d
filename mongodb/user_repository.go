package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peer2park/backend/users"
)

const usersCollection = "users"

var _ users.Repo = (*UserRepository)(nil)

// UserRepository implements the conditional user merge on MongoDB:
// identity fields ride $setOnInsert, updatable fields ride $set.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
	}
}

func (r *UserRepository) Merge(ctx context.Context, id users.Identity, upd users.ProfileUpdate, now time.Time) (*users.Record, error) {
	setOnInsert := bson.M{
		"createdAt": now,
	}
	if id.Email != "" {
		setOnInsert["email"] = id.Email
	}
	if id.EmailVerified != nil {
		setOnInsert["emailVerified"] = *id.EmailVerified
	}
	if id.Username != "" {
		setOnInsert["cognitoUsername"] = id.Username
	}
	if id.TokenUse != "" {
		setOnInsert["tokenUse"] = id.TokenUse
	}

	set := bson.M{
		"updatedAt": now,
	}
	if upd.DisplayName != nil {
		set["displayName"] = *upd.DisplayName
	}
	if upd.Profile != nil {
		set["profile"] = upd.Profile
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.Subject},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		opts,
	)

	var record users.Record
	if err := result.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to merge user %q: %w", id.Subject, err)
	}
	return &record, nil
}
