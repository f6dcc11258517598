package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/storage"
)

type fakeBucket struct {
	*fakeStorage
	promoted []string
}

func (b *fakeBucket) URI(key string) string { return "gs://test-bucket/" + key }

func (b *fakeBucket) Promote(ctx context.Context, pendingKey string) (storage.PutResult, error) {
	final := strings.TrimPrefix(pendingKey, storage.PendingPrefix)
	b.promoted = append(b.promoted, pendingKey)
	return storage.PutResult{Key: final, URL: "https://cdn.test/" + final}, nil
}

type fakeDetector struct {
	result *SafeSearchResult
	err    error
	seen   []string
}

func (d *fakeDetector) Detect(ctx context.Context, uri string) (*SafeSearchResult, error) {
	d.seen = append(d.seen, uri)
	return d.result, d.err
}

func TestSafeSearchResult_IsUnsafe(t *testing.T) {
	require.False(t, (&SafeSearchResult{Adult: "POSSIBLE", Violence: "UNLIKELY"}).IsUnsafe())
	require.True(t, (&SafeSearchResult{Racy: "LIKELY"}).IsUnsafe())
	require.True(t, (&SafeSearchResult{Violence: "VERY_LIKELY"}).IsUnsafe())
	require.False(t, (&SafeSearchResult{Spoof: "VERY_LIKELY", Medical: "VERY_LIKELY"}).IsUnsafe())
}

func TestModerationService(t *testing.T) {
	ctx := context.Background()

	t.Run("ModerateAndPromote_Safe", func(t *testing.T) {
		bucket := &fakeBucket{fakeStorage: newFakeStorage(storage.PendingPrefix)}
		det := &fakeDetector{result: &SafeSearchResult{Adult: "UNLIKELY"}}
		flags := NewMemoryFlagStore()
		svc := NewModerationService(bucket, det, flags)

		res, err := svc.ModerateAndPromote(ctx, "pending/a.png", "alice")
		require.NoError(t, err)
		require.Equal(t, "a.png", res.Key)
		require.Equal(t, []string{"gs://test-bucket/pending/a.png"}, det.seen)

		f, err := flags.Get(ctx, "alice")
		require.NoError(t, err)
		require.Zero(t, f.Strikes)
	})

	t.Run("ModerateAndPromote_UnsafeStrikes", func(t *testing.T) {
		bucket := &fakeBucket{fakeStorage: newFakeStorage(storage.PendingPrefix)}
		det := &fakeDetector{result: &SafeSearchResult{Adult: "VERY_LIKELY"}}
		flags := NewMemoryFlagStore()
		svc := NewModerationService(bucket, det, flags)

		_, err := svc.ModerateAndPromote(ctx, "pending/b.png", "alice")
		require.ErrorIs(t, err, ErrImageRejected)
		require.Equal(t, []string{"pending/b.png"}, bucket.deleted)
		require.Empty(t, bucket.promoted)

		f, err := flags.Get(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 1, f.Strikes)
	})

	t.Run("ModerateAndPromote_NotPending", func(t *testing.T) {
		det := &fakeDetector{}
		svc := NewModerationService(&fakeBucket{fakeStorage: newFakeStorage("")}, det, nil)
		res, err := svc.ModerateAndPromote(ctx, "final.png", "alice")
		require.NoError(t, err)
		require.Equal(t, "final.png", res.Key)
		require.Empty(t, det.seen)
	})

	t.Run("ModerateAndPromote_DetectorError", func(t *testing.T) {
		det := &fakeDetector{err: errors.New("quota")}
		svc := NewModerationService(&fakeBucket{fakeStorage: newFakeStorage("")}, det, nil)
		_, err := svc.ModerateAndPromote(ctx, "pending/c.png", "alice")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrImageRejected)
	})
}

func TestImageService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("Upload_RejectsNonImages", func(t *testing.T) {
		svc := NewImageService(newFakeStorage(""), nil, 1024)
		up := pngUpload("notes.txt")
		up.ContentType = "text/plain"
		_, err := svc.Upload(ctx, up, "alice", ImageKindProduct)
		require.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("Upload_RejectsLarge", func(t *testing.T) {
		svc := NewImageService(newFakeStorage(""), nil, 4)
		_, err := svc.Upload(ctx, pngUpload("big.png"), "alice", ImageKindProduct)
		require.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("Upload_ContentTypeFromExtension", func(t *testing.T) {
		svc := NewImageService(newFakeStorage(""), nil, 1024)
		up := pngUpload("photo.JPG")
		up.ContentType = ""
		res, err := svc.Upload(ctx, up, "alice", ImageKindProduct)
		require.NoError(t, err)
		require.NotEmpty(t, res.Key)
		require.Equal(t, "image/jpeg", up.ContentType)
	})

	t.Run("Upload_ModeratedPending", func(t *testing.T) {
		bucket := &fakeBucket{fakeStorage: newFakeStorage(storage.PendingPrefix)}
		mod := NewModerationService(bucket, &fakeDetector{result: &SafeSearchResult{}}, nil)
		svc := NewImageService(bucket, mod, 1024)

		res, err := svc.Upload(ctx, pngUpload("ok.png"), "alice", ImageKindProfile)
		require.NoError(t, err)
		require.False(t, strings.HasPrefix(res.Key, storage.PendingPrefix))
		require.Len(t, bucket.promoted, 1)
	})

	t.Run("SniffContentType_KeepsBody", func(t *testing.T) {
		ct, r, err := SniffContentType(strings.NewReader("\x89PNG\r\n\x1a\nrest"))
		require.NoError(t, err)
		require.Equal(t, "image/png", ct)
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, "\x89PNG\r\n\x1a\nrest", string(body))
	})
}

func TestModerationActions(t *testing.T) {
	ctx := context.Background()

	t.Run("ApplyApproved_Product", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "alice", models.RoleUser)
		p, err := f.stores.Products.Create(ctx, &models.Product{
			Name: "Mug", Price: 1, Quantity: 1, Status: lifecycle.StatusPending,
			SellerUsername: "alice", ImageKey: "pending/mug.png", ImagePath: "pending-url",
		})
		require.NoError(t, err)

		a := &ModerationActions{Products: f.stores.Products, Users: f.stores.Users}
		err = a.ApplyApproved(ctx, "alice", ImageKindProduct, "pending/mug.png", storage.PutResult{Key: "mug.png", URL: "final-url"})
		require.NoError(t, err)

		got, err := f.stores.Products.Get(ctx, p.Code)
		require.NoError(t, err)
		require.Equal(t, "mug.png", got.ImageKey)
		require.Equal(t, "final-url", got.ImagePath)
	})

	t.Run("ApplyRejected_ProfilePhoto", func(t *testing.T) {
		f := newFixture(t)
		u := f.addUser(t, "alice", models.RoleUser)
		u.ProfilePhoto, u.PhotoKey = "pending-url", "pending/me.png"
		require.NoError(t, f.stores.Users.Update(ctx, u))

		a := &ModerationActions{Products: f.stores.Products, Users: f.stores.Users, Flags: f.stores.Flags, Notifications: f.notes}
		require.NoError(t, a.ApplyRejected(ctx, "alice", ImageKindProfile, "pending/me.png"))

		got, err := f.stores.Users.Get(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, got.ProfilePhoto)

		flag, err := f.stores.Flags.Get(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 1, flag.Strikes)
		require.Equal(t, "pending/me.png", flag.LastObject)

		notes, err := f.notes.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.Equal(t, models.NotificationRejection, notes[0].Type)
	})

	t.Run("ApplyApproved_UnknownKind", func(t *testing.T) {
		f := newFixture(t)
		a := &ModerationActions{Products: f.stores.Products, Users: f.stores.Users}
		require.Error(t, a.ApplyApproved(ctx, "alice", "sale_cover", "pending/x.png", storage.PutResult{}))
	})
}
