package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/storage"
)

// ModerationActions points stored records at the outcome of an
// asynchronous moderation pass.
type ModerationActions struct {
	Products      ProductStore
	Users         UserStore
	Flags         FlagStore
	Notifications *NotificationService
}

// ApplyApproved swaps the pending reference for the promoted object.
func (a *ModerationActions) ApplyApproved(ctx context.Context, username, kind, pendingKey string, final storage.PutResult) error {
	switch kind {
	case ImageKindProduct:
		p, err := a.productWithImage(ctx, username, pendingKey)
		if err != nil || p == nil {
			return err
		}
		_, err = a.Products.SetImage(ctx, p.Code, pendingKey, final.URL, final.Key)
		if errors.Is(err, ErrStatusConflict) {
			log.Printf("[moderation] product %d moved off %s before promotion", p.Code, pendingKey)
			return nil
		}
		return err
	case ImageKindProfile:
		u, err := a.Users.Get(ctx, username)
		if err != nil {
			return err
		}
		if u.PhotoKey != pendingKey {
			return nil
		}
		u.ProfilePhoto, u.PhotoKey = final.URL, final.Key
		return a.Users.Update(ctx, u)
	default:
		return fmt.Errorf("unknown image type %q", kind)
	}
}

// ApplyRejected clears references to a deleted unsafe object, records a
// strike and tells the uploader.
func (a *ModerationActions) ApplyRejected(ctx context.Context, username, kind, pendingKey string) error {
	if a.Flags != nil && username != "" {
		if _, err := a.Flags.AddStrike(ctx, username, pendingKey); err != nil {
			log.Printf("[moderation] strike failed username=%s err=%v", username, err)
		}
	}

	var msg string
	switch kind {
	case ImageKindProduct:
		p, err := a.productWithImage(ctx, username, pendingKey)
		if err != nil || p == nil {
			return err
		}
		if _, err := a.Products.SetImage(ctx, p.Code, pendingKey, "", ""); err != nil && !errors.Is(err, ErrStatusConflict) {
			return err
		}
		msg = fmt.Sprintf("The image of your product '%s' was removed because it violates community guidelines.", p.Name)
	case ImageKindProfile:
		u, err := a.Users.Get(ctx, username)
		if err != nil {
			return err
		}
		// Profile photos are user-owned; clear even if the key moved on.
		u.ProfilePhoto, u.PhotoKey = "", ""
		if err := a.Users.Update(ctx, u); err != nil {
			return err
		}
		msg = "Your profile photo was removed because it violates community guidelines."
	default:
		return fmt.Errorf("unknown image type %q", kind)
	}

	if a.Notifications != nil {
		if _, err := a.Notifications.Notify(ctx, username, msg, models.NotificationRejection); err != nil {
			log.Printf("[moderation] notify username=%s err=%v", username, err)
		}
	}
	return nil
}

func (a *ModerationActions) productWithImage(ctx context.Context, seller, key string) (*models.Product, error) {
	list, err := a.Products.List(ctx, ProductQuery{Seller: seller})
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.ImageKey == key {
			return p, nil
		}
	}
	log.Printf("[moderation] no product of %s references %s", seller, key)
	return nil, nil
}
