package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

type MongoProductStore struct {
	productsColl *mongo.Collection
	countersColl *mongo.Collection
}

type mongoProductDoc struct {
	Code           int       `bson:"_id"`
	Name           string    `bson:"name"`
	Description    string    `bson:"description"`
	Price          float64   `bson:"price"`
	Quantity       int       `bson:"quantity"`
	ImagePath      string    `bson:"image_path,omitempty"`
	ImageKey       string    `bson:"image_key,omitempty"`
	Category       string    `bson:"category"`
	Condition      string    `bson:"condition"`
	Status         string    `bson:"status"`
	Feedback       string    `bson:"feedback,omitempty"`
	SellerUsername string    `bson:"seller_username"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func NewMongoProductStore(ctx context.Context, db *mongo.Database) *MongoProductStore {
	products := db.Collection("products")

	// Best-effort indexes.
	_, _ = products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_username", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "condition", Value: 1}}},
	})

	log.Printf("MongoDB products store ready: db=%s", db.Name())
	return &MongoProductStore{
		productsColl: products,
		countersColl: db.Collection("counters"),
	}
}

func productDocToModel(d mongoProductDoc) *models.Product {
	return &models.Product{
		Code:           d.Code,
		Name:           d.Name,
		Description:    d.Description,
		Price:          d.Price,
		Quantity:       d.Quantity,
		ImagePath:      d.ImagePath,
		ImageKey:       d.ImageKey,
		Category:       models.Category(d.Category),
		Condition:      models.Condition(d.Condition),
		Status:         lifecycle.Status(d.Status),
		Feedback:       d.Feedback,
		SellerUsername: d.SellerUsername,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func productModelToDoc(p *models.Product) mongoProductDoc {
	return mongoProductDoc{
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Quantity:       p.Quantity,
		ImagePath:      p.ImagePath,
		ImageKey:       p.ImageKey,
		Category:       string(p.Category),
		Condition:      string(p.Condition),
		Status:         string(p.Status),
		Feedback:       p.Feedback,
		SellerUsername: p.SellerUsername,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// nextCode hands out sequential product codes from the counters collection.
func (s *MongoProductStore) nextCode(ctx context.Context) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.countersColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "product_code"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	return counter.Seq, err
}

func (s *MongoProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	code, err := s.nextCode(ctx)
	if err != nil {
		return nil, err
	}
	doc := productModelToDoc(p)
	doc.Code = code

	if _, err := s.productsColl.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return productDocToModel(doc), nil
}

func (s *MongoProductStore) Get(ctx context.Context, code int) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var doc mongoProductDoc
	if err := s.productsColl.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productDocToModel(doc), nil
}

func productFilter(q ProductQuery) bson.M {
	filter := bson.M{}
	switch {
	case q.Seller != "":
		filter["seller_username"] = q.Seller
	case q.ExcludeSeller != "":
		filter["seller_username"] = bson.M{"$ne": q.ExcludeSeller}
	}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	if q.Condition != "" {
		filter["condition"] = string(q.Condition)
	}
	return filter
}

func (s *MongoProductStore) List(ctx context.Context, q ProductQuery) ([]*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	filter := productFilter(q)
	if q.Seller != "" && q.ExcludeSeller != "" && q.Seller == q.ExcludeSeller {
		return []*models.Product{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.productsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Product, 0)
	for cur.Next(ctx) {
		var d mongoProductDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, productDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoProductStore) Update(ctx context.Context, p *models.Product, expected lifecycle.Status) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res := s.productsColl.FindOneAndReplace(ctx,
		bson.M{"_id": p.Code, "status": string(expected)},
		productModelToDoc(p),
		options.FindOneAndReplace().SetReturnDocument(options.After),
	)
	return s.decodeGuarded(ctx, p.Code, res)
}

// SetReview writes only the review fields, leaving seller edits intact.
func (s *MongoProductStore) SetReview(ctx context.Context, code int, expected lifecycle.Status, r ReviewUpdate) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	set := bson.M{"status": string(r.Status), "updated_at": r.UpdatedAt}
	update := bson.M{"$set": set}
	if r.Feedback == "" {
		update["$unset"] = bson.M{"feedback": ""}
	} else {
		set["feedback"] = r.Feedback
	}
	res := s.productsColl.FindOneAndUpdate(ctx,
		bson.M{"_id": code, "status": string(expected)},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return s.decodeGuarded(ctx, code, res)
}

func (s *MongoProductStore) SetImage(ctx context.Context, code int, fromKey, path, key string) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	res := s.productsColl.FindOneAndUpdate(ctx,
		bson.M{"_id": code, "image_key": fromKey},
		bson.M{"$set": bson.M{"image_path": path, "image_key": key}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return s.decodeGuarded(ctx, code, res)
}

// decodeGuarded tells a missing listing apart from one whose guard field
// no longer matched.
func (s *MongoProductStore) decodeGuarded(ctx context.Context, code int, res *mongo.SingleResult) (*models.Product, error) {
	var updated mongoProductDoc
	err := res.Decode(&updated)
	if err == nil {
		return productDocToModel(updated), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	n, cerr := s.productsColl.CountDocuments(ctx, bson.M{"_id": code})
	switch {
	case cerr != nil:
		return nil, cerr
	case n == 0:
		return nil, ErrProductNotFound
	}
	return nil, ErrStatusConflict
}

func (s *MongoProductStore) Delete(ctx context.Context, code int) (*models.Product, error) {
	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()

	var doc mongoProductDoc
	if err := s.productsColl.FindOneAndDelete(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productDocToModel(doc), nil
}

func (s *MongoProductStore) DeleteBySeller(ctx context.Context, seller string) ([]*models.Product, error) {
	list, err := s.List(ctx, ProductQuery{Seller: seller})
	if err != nil {
		return nil, err
	}

	ctx, cancel := withMongoTimeout(ctx)
	defer cancel()
	if _, err := s.productsColl.DeleteMany(ctx, bson.M{"seller_username": seller}); err != nil {
		return nil, err
	}
	return list, nil
}
