package services

import (
	"context"
	"log"
	"time"
)

type AccountService struct {
	users         UserStore
	products      ProductStore
	bookmarks     BookmarkStore
	notifications NotificationStore
	messages      MessageStore
	images        *ImageService
}

func NewAccountService(users UserStore, products ProductStore, bookmarks BookmarkStore, notifications NotificationStore, messages MessageStore, images *ImageService) *AccountService {
	return &AccountService{
		users:         users,
		products:      products,
		bookmarks:     bookmarks,
		notifications: notifications,
		messages:      messages,
		images:        images,
	}
}

type DeleteAccountResult struct {
	Username        string `json:"username"`
	DeletedProducts []int  `json:"deletedProducts"`
}

// DeleteAccount removes a user together with their listings and images,
// bookmarks (their own and those pointing at their listings),
// notifications and messages.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) (*DeleteAccountResult, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.products.DeleteBySeller(ctx, username)
	if err != nil {
		return nil, err
	}
	codes := make([]int, 0, len(removed))
	for _, p := range removed {
		codes = append(codes, p.Code)
		s.removeImage(ctx, p.ImageKey)
		if err := s.bookmarks.DeleteByProduct(ctx, p.Code); err != nil {
			log.Printf("[DeleteAccount] bookmarks code=%d err=%v", p.Code, err)
		}
	}

	if err := s.bookmarks.DeleteByUser(ctx, username); err != nil {
		log.Printf("[DeleteAccount] bookmarks username=%s err=%v", username, err)
	}
	if err := s.notifications.DeleteByUser(ctx, username); err != nil {
		log.Printf("[DeleteAccount] notifications username=%s err=%v", username, err)
	}
	if err := s.messages.DeleteByUser(ctx, username); err != nil {
		log.Printf("[DeleteAccount] messages username=%s err=%v", username, err)
	}
	s.removeImage(ctx, u.PhotoKey)

	if err := s.users.Delete(ctx, username); err != nil {
		return nil, err
	}
	log.Printf("[DeleteAccount] username=%s products=%d", username, len(codes))
	return &DeleteAccountResult{Username: username, DeletedProducts: codes}, nil
}

func (s *AccountService) removeImage(ctx context.Context, key string) {
	if s.images != nil {
		s.images.Remove(ctx, key)
	}
}

// DefaultAccountTimeout bounds a cascading delete.
func DefaultAccountTimeout() time.Duration { return 20 * time.Second }
