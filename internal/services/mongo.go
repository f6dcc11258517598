package services

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 10 * time.Second

// ConnectMongo opens and pings a client shared by every Mongo store.
func ConnectMongo(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	// Pin TLS 1.2 for Atlas clusters.
	opts := options.Client().ApplyURI(mongoURI)
	if opts.TLSConfig != nil {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Printf("MongoDB connected")
	return client, nil
}

// withMongoTimeout bounds a store call by the caller's context and the default timeout.
func withMongoTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, mongoTimeout)
}

func logIndexErr(collection string, err error) {
	log.Printf("[mongo] index setup failed collection=%s err=%v", collection, err)
}
