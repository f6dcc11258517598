package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/campuscart/backend/internal/models"
)

type MessageService struct {
	messages MessageStore
	users    UserStore
	products ProductStore
}

func NewMessageService(messages MessageStore, users UserStore, products ProductStore) *MessageService {
	return &MessageService{messages: messages, users: users, products: products}
}

func (s *MessageService) Send(ctx context.Context, sender string, req *models.SendMessageRequest) (*models.Message, error) {
	if req.Receiver == sender {
		return nil, ErrInvalidRecipient
	}
	if _, err := s.users.Get(ctx, req.Receiver); err != nil {
		return nil, err
	}
	if req.ProductCode != nil {
		if _, err := s.products.Get(ctx, *req.ProductCode); err != nil {
			return nil, err
		}
	}

	m := &models.Message{
		ID:          uuid.NewString(),
		Sender:      sender,
		Receiver:    req.Receiver,
		Content:     req.Content,
		ProductCode: req.ProductCode,
		CreatedAt:   nowUTC(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation returns the history between two users, oldest first,
// optionally scoped to one listing.
func (s *MessageService) Conversation(ctx context.Context, a, b string, productCode *int) ([]*models.Message, error) {
	return s.messages.Between(ctx, a, b, productCode)
}

// MarkRead is only allowed for the receiver of the message.
func (s *MessageService) MarkRead(ctx context.Context, id, username string) error {
	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Receiver != username {
		return ErrForbidden
	}
	if m.Read {
		return nil
	}
	return s.messages.MarkRead(ctx, id)
}

func (s *MessageService) Unread(ctx context.Context, username string) ([]*models.Message, error) {
	return s.messages.Unread(ctx, username)
}

func (s *MessageService) UnreadCount(ctx context.Context, username string) (int, error) {
	return s.messages.CountUnread(ctx, username)
}

type conversationKey struct {
	other string
	code  int
	has   bool
}

// Conversations groups the messages of username by partner and listing,
// latest conversation first.
func (s *MessageService) Conversations(ctx context.Context, username string) ([]models.Conversation, error) {
	msgs, err := s.messages.Involving(ctx, username)
	if err != nil {
		return nil, err
	}

	byKey := make(map[conversationKey]*models.Conversation)
	for _, m := range msgs {
		k := conversationKey{other: m.Other(username)}
		if m.ProductCode != nil {
			k.code, k.has = *m.ProductCode, true
		}
		c, ok := byKey[k]
		if !ok {
			c = &models.Conversation{OtherUser: k.other, ProductCode: m.ProductCode}
			byKey[k] = c
		}
		if c.LatestMessage == nil || !m.CreatedAt.Before(c.LatestMessage.CreatedAt) {
			c.LatestMessage = m
		}
		if m.Receiver == username && !m.Read {
			c.UnreadCount++
		}
	}

	out := make([]models.Conversation, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LatestMessage.CreatedAt.After(out[j].LatestMessage.CreatedAt)
	})
	return out, nil
}

// Partners lists the users username has exchanged messages with, most
// recent first.
func (s *MessageService) Partners(ctx context.Context, username string) ([]string, error) {
	convs, err := s.Conversations(ctx, username)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(convs))
	for _, c := range convs {
		if !seen[c.OtherUser] {
			seen[c.OtherUser] = true
			out = append(out, c.OtherUser)
		}
	}
	return out, nil
}

// IsNotFound reports whether err means a missing user, listing or message.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrMessageNotFound) || errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrBookmarkNotFound)
}
