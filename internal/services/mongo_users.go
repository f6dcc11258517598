package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscart/backend/internal/models"
)

type MongoUserStore struct {
	col *mongo.Collection
}

type mongoUserDoc struct {
	Username     string    `bson:"_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Email        string    `bson:"email"`
	ContactNo    string    `bson:"contact_no,omitempty"`
	Address      string    `bson:"address,omitempty"`
	ProfilePhoto string    `bson:"profile_photo,omitempty"`
	PhotoKey     string    `bson:"photo_key,omitempty"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func NewMongoUserStore(ctx context.Context, db *mongo.Database) *MongoUserStore {
	col := db.Collection("users")
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return &MongoUserStore{col: col}
}

func userDocToModel(d mongoUserDoc) *models.User {
	return &models.User{
		Username:     d.Username,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		ContactNo:    d.ContactNo,
		Address:      d.Address,
		ProfilePhoto: d.ProfilePhoto,
		PhotoKey:     d.PhotoKey,
		Role:         models.Role(d.Role),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func userModelToDoc(u *models.User) mongoUserDoc {
	return mongoUserDoc{
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        strings.ToLower(u.Email),
		ContactNo:    u.ContactNo,
		Address:      u.Address,
		ProfilePhoto: u.ProfilePhoto,
		PhotoKey:     u.PhotoKey,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// duplicateUserError tells a username clash from an email clash.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, userModelToDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateUserError(err)
		}
		return err
	}
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var doc mongoUserDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userDocToModel(doc), nil
}

func (s *MongoUserStore) Get(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": username})
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoUserStore) List(ctx context.Context, role models.Role) ([]*models.User, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.User, 0)
	for cur.Next(ctx) {
		var d mongoUserDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, userDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoUserStore) Update(ctx context.Context, u *models.User) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.Username}, userModelToDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) Delete(ctx context.Context, username string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
