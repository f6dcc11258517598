package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/campuscart/backend/internal/models"
)

type NotificationService struct {
	store  NotificationStore
	users  UserStore
	mailer Mailer
}

// NewNotificationService builds the service. With a mailer every
// notification is also emailed to the user.
func NewNotificationService(store NotificationStore, users UserStore, mailer Mailer) *NotificationService {
	return &NotificationService{store: store, users: users, mailer: mailer}
}

func (s *NotificationService) Notify(ctx context.Context, username, message string, typ models.NotificationType) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   message,
		Type:      typ,
		CreatedAt: nowUTC(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.mailer != nil && s.users != nil {
		u, err := s.users.Get(ctx, username)
		if err != nil {
			log.Printf("[Notify] mail lookup username=%s err=%v", username, err)
			return n, nil
		}
		if err := s.mailer.Send(ctx, u.Email, u.FirstName+" "+u.LastName, "CampusCart notification", message); err != nil {
			log.Printf("[Notify] mail send username=%s err=%v", username, err)
		}
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, username string) ([]*models.Notification, error) {
	return s.store.ListByUser(ctx, username)
}

func (s *NotificationService) UnreadCount(ctx context.Context, username string) (int, error) {
	list, err := s.store.ListByUser(ctx, username)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, username string) error {
	return s.store.MarkRead(ctx, id, username)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, username string) (int, error) {
	return s.store.MarkAllRead(ctx, username)
}
