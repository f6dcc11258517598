package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscart/backend/internal/models"
)

type MongoNotificationStore struct {
	col *mongo.Collection
}

type mongoNotificationDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Message   string    `bson:"message"`
	Type      string    `bson:"type"`
	Read      bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

func NewMongoNotificationStore(ctx context.Context, db *mongo.Database) *MongoNotificationStore {
	col := db.Collection("notifications")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &MongoNotificationStore{col: col}
}

func (s *MongoNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.InsertOne(ctx, mongoNotificationDoc{
		ID:        n.ID,
		Username:  n.Username,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	})
	return err
}

func (s *MongoNotificationStore) ListByUser(ctx context.Context, username string) ([]*models.Notification, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	cur, err := s.col.Find(ctx, bson.M{"username": username},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Notification, 0)
	for cur.Next(ctx) {
		var d mongoNotificationDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &models.Notification{
			ID:        d.ID,
			Username:  d.Username,
			Message:   d.Message,
			Type:      models.NotificationType(d.Type),
			Read:      d.Read,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, cur.Err()
}

func (s *MongoNotificationStore) MarkRead(ctx context.Context, id, username string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "username": username}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *MongoNotificationStore) MarkAllRead(ctx context.Context, username string) (int, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.UpdateMany(ctx, bson.M{"username": username, "is_read": false}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoNotificationStore) DeleteByUser(ctx context.Context, username string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.DeleteMany(ctx, bson.M{"username": username})
	return err
}

type MongoMessageStore struct {
	col *mongo.Collection
}

type mongoMessageDoc struct {
	ID          string    `bson:"_id"`
	Sender      string    `bson:"sender"`
	Receiver    string    `bson:"receiver"`
	Content     string    `bson:"content"`
	ProductCode *int      `bson:"product_code,omitempty"`
	Read        bool      `bson:"is_read"`
	CreatedAt   time.Time `bson:"created_at"`
}

func NewMongoMessageStore(ctx context.Context, db *mongo.Database) *MongoMessageStore {
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "is_read", Value: 1}}},
	})
	return &MongoMessageStore{col: col}
}

func messageDocToModel(d mongoMessageDoc) *models.Message {
	return &models.Message{
		ID:          d.ID,
		Sender:      d.Sender,
		Receiver:    d.Receiver,
		Content:     d.Content,
		ProductCode: d.ProductCode,
		Read:        d.Read,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *MongoMessageStore) Create(ctx context.Context, m *models.Message) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.InsertOne(ctx, mongoMessageDoc{
		ID:          m.ID,
		Sender:      m.Sender,
		Receiver:    m.Receiver,
		Content:     m.Content,
		ProductCode: m.ProductCode,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	})
	return err
}

func (s *MongoMessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var d mongoMessageDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return messageDocToModel(d), nil
}

func (s *MongoMessageStore) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *MongoMessageStore) find(ctx context.Context, filter bson.M) ([]*models.Message, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Message, 0)
	for cur.Next(ctx) {
		var d mongoMessageDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, messageDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoMessageStore) Between(ctx context.Context, a, b string, productCode *int) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender": a, "receiver": b},
		{"sender": b, "receiver": a},
	}}
	if productCode != nil {
		filter["product_code"] = *productCode
	}
	return s.find(ctx, filter)
}

func (s *MongoMessageStore) Involving(ctx context.Context, username string) ([]*models.Message, error) {
	return s.find(ctx, bson.M{"$or": []bson.M{{"sender": username}, {"receiver": username}}})
}

func (s *MongoMessageStore) Unread(ctx context.Context, receiver string) ([]*models.Message, error) {
	return s.find(ctx, bson.M{"receiver": receiver, "is_read": false})
}

func (s *MongoMessageStore) CountUnread(ctx context.Context, receiver string) (int, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, bson.M{"receiver": receiver, "is_read": false})
	return int(n), err
}

func (s *MongoMessageStore) DeleteByUser(ctx context.Context, username string) error {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	_, err := s.col.DeleteMany(ctx, bson.M{"$or": []bson.M{{"sender": username}, {"receiver": username}}})
	return err
}
