package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscart/backend/internal/models"
)

type MongoBookmarkStore struct {
	col *mongo.Collection
}

type mongoBookmarkDoc struct {
	ID          string    `bson:"_id"`
	Username    string    `bson:"username"`
	ProductCode int       `bson:"product_code"`
	CreatedAt   time.Time `bson:"created_at"`
}

func NewMongoBookmarkStore(ctx context.Context, db *mongo.Database) *MongoBookmarkStore {
	col := db.Collection("bookmarks")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "product_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return &MongoBookmarkStore{col: col}
}

func (s *MongoBookmarkStore) Add(ctx context.Context, b *models.Bookmark) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.InsertOne(ctx, mongoBookmarkDoc{
		ID:          b.ID,
		Username:    b.Username,
		ProductCode: b.ProductCode,
		CreatedAt:   b.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyBookmarked
		}
		return err
	}
	return nil
}

func (s *MongoBookmarkStore) Remove(ctx context.Context, username string, code int) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"username": username, "product_code": code})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (s *MongoBookmarkStore) ListByUser(ctx context.Context, username string) ([]*models.Bookmark, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{"username": username},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Bookmark, 0)
	for cur.Next(ctx) {
		var d mongoBookmarkDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &models.Bookmark{
			ID:          d.ID,
			Username:    d.Username,
			ProductCode: d.ProductCode,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, cur.Err()
}

func (s *MongoBookmarkStore) DeleteByProduct(ctx context.Context, code int) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.DeleteMany(ctx, bson.M{"product_code": code})
	return err
}

func (s *MongoBookmarkStore) DeleteByUser(ctx context.Context, username string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.DeleteMany(ctx, bson.M{"username": username})
	return err
}
