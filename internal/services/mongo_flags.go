package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscart/backend/internal/models"
)

// MongoFlagStore keeps one strike document per username in user_flags.
type MongoFlagStore struct {
	col *mongo.Collection
}

func NewMongoFlagStore(ctx context.Context, db *mongo.Database) *MongoFlagStore {
	s := &MongoFlagStore{col: db.Collection("user_flags")}
	if _, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}); err != nil {
		logIndexErr("user_flags", err)
	}
	return s
}

// AddStrike upserts the user's flag document, bumping the counter and
// remembering the offending object key.
func (s *MongoFlagStore) AddStrike(ctx context.Context, username, objectKey string) (*models.UserFlag, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	now := nowUTC()
	set := bson.M{"last_strike_at": now, "updated_at": now}
	if objectKey != "" {
		set["last_object"] = objectKey
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var flag models.UserFlag
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$inc": bson.M{"strikes": 1}, "$set": set},
		opts,
	).Decode(&flag)
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

// Get returns a zero-strike record for users never flagged.
func (s *MongoFlagStore) Get(ctx context.Context, username string) (*models.UserFlag, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var flag models.UserFlag
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&flag)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return &models.UserFlag{Username: username}, nil
	case err != nil:
		return nil, err
	}
	return &flag, nil
}
