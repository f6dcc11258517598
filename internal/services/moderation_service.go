package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/campuscart/backend/internal/storage"
)

// Kinds of uploaded image, stored as object metadata "type".
const (
	ImageKindProduct = "product_image"
	ImageKindProfile = "profile_photo"
)

// PendingBucket is the part of storage.GCS moderation needs.
type PendingBucket interface {
	URI(key string) string
	Promote(ctx context.Context, pendingKey string) (storage.PutResult, error)
	Delete(ctx context.Context, key string) error
}

// ModerationService runs SafeSearch on pending uploads and promotes the safe
// ones synchronously.
type ModerationService struct {
	bucket   PendingBucket
	detector SafeSearchDetector
	flags    FlagStore
}

// NewModerationService builds the service. flags may be nil if strikes are
// not tracked.
func NewModerationService(bucket PendingBucket, detector SafeSearchDetector, flags FlagStore) *ModerationService {
	return &ModerationService{bucket: bucket, detector: detector, flags: flags}
}

// Check runs SafeSearch on key without acting on the result.
func (m *ModerationService) Check(ctx context.Context, key string) (*SafeSearchResult, error) {
	uri := m.bucket.URI(key)
	log.Printf("[moderation] running SafeSearch on %s", uri)

	ss, err := m.detector.Detect(ctx, uri)
	if err != nil {
		log.Printf("[moderation] SafeSearch error key=%s err=%v", key, err)
		return nil, fmt.Errorf("moderation: safesearch: %w", err)
	}
	log.Printf("[moderation] SafeSearch result for %s: %s unsafe=%v", key, ss, ss.IsUnsafe())
	return ss, nil
}

// ModerateAndPromote checks a pending object. Safe objects are promoted to
// their final key. Unsafe ones are deleted, a strike is recorded against
// username and ErrImageRejected is returned.
func (m *ModerationService) ModerateAndPromote(ctx context.Context, pendingKey, username string) (storage.PutResult, error) {
	if !strings.HasPrefix(pendingKey, storage.PendingPrefix) {
		return storage.PutResult{Key: pendingKey}, nil
	}

	ss, err := m.Check(ctx, pendingKey)
	if err != nil {
		return storage.PutResult{}, err
	}

	if ss.IsUnsafe() {
		m.Reject(ctx, pendingKey, username)
		return storage.PutResult{}, ErrImageRejected
	}

	log.Printf("[moderation] image SAFE, promoting %s", pendingKey)
	res, err := m.bucket.Promote(ctx, pendingKey)
	if err != nil {
		return storage.PutResult{}, fmt.Errorf("moderation: promote: %w", err)
	}
	return res, nil
}

// Reject deletes an unsafe object and records a strike.
func (m *ModerationService) Reject(ctx context.Context, key, username string) {
	log.Printf("[moderation] image UNSAFE, deleting %s", key)
	if err := m.bucket.Delete(ctx, key); err != nil {
		log.Printf("[moderation] delete failed key=%s err=%v", key, err)
	}
	if m.flags != nil && username != "" {
		if f, err := m.flags.AddStrike(ctx, username, key); err != nil {
			log.Printf("[moderation] strike failed username=%s err=%v", username, err)
		} else {
			log.Printf("[moderation] strike recorded username=%s strikes=%d", username, f.Strikes)
		}
	}
}
