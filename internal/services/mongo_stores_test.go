package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

// mongoStores connects to MONGO_TEST_URI and returns stores on a throwaway
// database, or skips the test.
func mongoStores(t *testing.T) *Stores {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := ConnectMongo(ctx, uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("campuscart_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoStores(ctx, db)
}

func TestMongoStores(t *testing.T) {
	stores := mongoStores(t)
	ctx := context.Background()

	t.Run("Products_SequentialCodesAndQuery", func(t *testing.T) {
		now := nowUTC()
		a, err := stores.Products.Create(ctx, &models.Product{Name: "A", SellerUsername: "alice", Status: lifecycle.StatusApproved, CreatedAt: now})
		require.NoError(t, err)
		b, err := stores.Products.Create(ctx, &models.Product{Name: "B", SellerUsername: "bob", Status: lifecycle.StatusPending, CreatedAt: now.Add(time.Second)})
		require.NoError(t, err)
		require.Equal(t, a.Code+1, b.Code)

		list, err := stores.Products.List(ctx, ProductQuery{ExcludeSeller: "bob", Status: lifecycle.StatusApproved})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "A", list[0].Name)

		b.Name = "B2"
		b.Status = lifecycle.StatusRejected
		_, err = stores.Products.Update(ctx, b, lifecycle.StatusApproved)
		require.ErrorIs(t, err, ErrStatusConflict)
		updated, err := stores.Products.Update(ctx, b, lifecycle.StatusPending)
		require.NoError(t, err)
		require.Equal(t, lifecycle.StatusRejected, updated.Status)

		reviewed, err := stores.Products.SetReview(ctx, b.Code, lifecycle.StatusRejected,
			ReviewUpdate{Status: lifecycle.StatusApproved, UpdatedAt: nowUTC()})
		require.NoError(t, err)
		require.Equal(t, lifecycle.StatusApproved, reviewed.Status)
		require.Equal(t, "B2", reviewed.Name)
		_, err = stores.Products.SetReview(ctx, b.Code, lifecycle.StatusPending, ReviewUpdate{Status: lifecycle.StatusRejected})
		require.ErrorIs(t, err, ErrStatusConflict)
		_, err = stores.Products.SetReview(ctx, 999999, lifecycle.StatusPending, ReviewUpdate{Status: lifecycle.StatusRejected})
		require.ErrorIs(t, err, ErrProductNotFound)

		removed, err := stores.Products.DeleteBySeller(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, removed, 1)
		_, err = stores.Products.Get(ctx, a.Code)
		require.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Users_Duplicates", func(t *testing.T) {
		u := &models.User{Username: "karen", Email: "karen@campus.edu", Role: models.RoleUser, PasswordHash: "h"}
		require.NoError(t, stores.Users.Create(ctx, u))
		require.ErrorIs(t, stores.Users.Create(ctx, u), ErrUsernameExists)

		other := &models.User{Username: "karen2", Email: "karen@campus.edu", Role: models.RoleUser}
		require.ErrorIs(t, stores.Users.Create(ctx, other), ErrEmailExists)

		got, err := stores.Users.GetByEmail(ctx, "karen@campus.edu")
		require.NoError(t, err)
		require.Equal(t, "h", got.PasswordHash)
	})

	t.Run("Bookmarks_Unique", func(t *testing.T) {
		b := &models.Bookmark{ID: "b1", Username: "bob", ProductCode: 7, CreatedAt: nowUTC()}
		require.NoError(t, stores.Bookmarks.Add(ctx, b))
		b.ID = "b2"
		require.ErrorIs(t, stores.Bookmarks.Add(ctx, b), ErrAlreadyBookmarked)
		require.NoError(t, stores.Bookmarks.Remove(ctx, "bob", 7))
		require.ErrorIs(t, stores.Bookmarks.Remove(ctx, "bob", 7), ErrBookmarkNotFound)
	})

	t.Run("Messages_UnreadCount", func(t *testing.T) {
		require.NoError(t, stores.Messages.Create(ctx, &models.Message{ID: "m1", Sender: "a", Receiver: "b", Content: "hi", CreatedAt: nowUTC()}))
		n, err := stores.Messages.CountUnread(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.NoError(t, stores.Messages.MarkRead(ctx, "m1"))
		n, err = stores.Messages.CountUnread(ctx, "b")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("Flags_AddStrike", func(t *testing.T) {
		_, err := stores.Flags.AddStrike(ctx, "mallory", "pending/a.png")
		require.NoError(t, err)
		f, err := stores.Flags.AddStrike(ctx, "mallory", "pending/b.png")
		require.NoError(t, err)
		require.Equal(t, 2, f.Strikes)
		require.Equal(t, "pending/b.png", f.LastObject)
	})
}
