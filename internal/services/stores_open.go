package services

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Stores groups one implementation of every store.
type Stores struct {
	Products      ProductStore
	Users         UserStore
	Notifications NotificationStore
	Messages      MessageStore
	Bookmarks     BookmarkStore
	Flags         FlagStore
}

// NewMemoryStores keeps everything in process. A non-empty dataDir persists
// each store as a JSON file there.
func NewMemoryStores(dataDir string) (*Stores, error) {
	products, err := NewMemoryProductStore(dataDir)
	if err != nil {
		return nil, err
	}
	users, err := NewMemoryUserStore(dataDir)
	if err != nil {
		return nil, err
	}
	notifications, err := NewMemoryNotificationStore(dataDir)
	if err != nil {
		return nil, err
	}
	messages, err := NewMemoryMessageStore(dataDir)
	if err != nil {
		return nil, err
	}
	bookmarks, err := NewMemoryBookmarkStore(dataDir)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Products:      products,
		Users:         users,
		Notifications: notifications,
		Messages:      messages,
		Bookmarks:     bookmarks,
		Flags:         NewMemoryFlagStore(),
	}, nil
}

// NewMongoStores opens every collection of db, creating indexes on the way.
func NewMongoStores(ctx context.Context, db *mongo.Database) *Stores {
	return &Stores{
		Products:      NewMongoProductStore(ctx, db),
		Users:         NewMongoUserStore(ctx, db),
		Notifications: NewMongoNotificationStore(ctx, db),
		Messages:      NewMongoMessageStore(ctx, db),
		Bookmarks:     NewMongoBookmarkStore(ctx, db),
		Flags:         NewMongoFlagStore(ctx, db),
	}
}
