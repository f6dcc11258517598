package services

import (
	"context"
	"time"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

// ProductQuery narrows a product listing. Zero fields do not filter.
type ProductQuery struct {
	Seller        string
	ExcludeSeller string
	Status        lifecycle.Status
	Category      models.Category
	Condition     models.Condition
}

func (q ProductQuery) matches(p *models.Product) bool {
	if q.Seller != "" && p.SellerUsername != q.Seller {
		return false
	}
	if q.ExcludeSeller != "" && p.SellerUsername == q.ExcludeSeller {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Condition != "" && p.Condition != q.Condition {
		return false
	}
	return true
}

// ProductStore persists listings. List returns newest first.
//
// The writes that follow a read are conditional: Update and SetReview only
// apply while the stored status still equals expected, and SetImage only
// while the stored image key still equals fromKey. A listing that moved on
// in between yields ErrStatusConflict.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Get(ctx context.Context, code int) (*models.Product, error)
	List(ctx context.Context, q ProductQuery) ([]*models.Product, error)
	Update(ctx context.Context, p *models.Product, expected lifecycle.Status) (*models.Product, error)
	SetReview(ctx context.Context, code int, expected lifecycle.Status, r ReviewUpdate) (*models.Product, error)
	SetImage(ctx context.Context, code int, fromKey, path, key string) (*models.Product, error)
	Delete(ctx context.Context, code int) (*models.Product, error)
	DeleteBySeller(ctx context.Context, seller string) ([]*models.Product, error)
}

// ReviewUpdate is the part of a listing an admin review writes.
type ReviewUpdate struct {
	Status    lifecycle.Status
	Feedback  string
	UpdatedAt time.Time
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, username string) error
}

// NotificationStore lists newest first.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, username string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, username string) error
	MarkAllRead(ctx context.Context, username string) (int, error)
	DeleteByUser(ctx context.Context, username string) error
}

// MessageStore lists oldest first. A nil productCode in Between returns the
// whole history between the two users.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	Get(ctx context.Context, id string) (*models.Message, error)
	MarkRead(ctx context.Context, id string) error
	Between(ctx context.Context, a, b string, productCode *int) ([]*models.Message, error)
	Involving(ctx context.Context, username string) ([]*models.Message, error)
	Unread(ctx context.Context, receiver string) ([]*models.Message, error)
	CountUnread(ctx context.Context, receiver string) (int, error)
	DeleteByUser(ctx context.Context, username string) error
}

// BookmarkStore lists newest first.
type BookmarkStore interface {
	Add(ctx context.Context, b *models.Bookmark) error
	Remove(ctx context.Context, username string, code int) error
	ListByUser(ctx context.Context, username string) ([]*models.Bookmark, error)
	DeleteByProduct(ctx context.Context, code int) error
	DeleteByUser(ctx context.Context, username string) error
}

// FlagStore counts moderation strikes per user.
type FlagStore interface {
	AddStrike(ctx context.Context, username, objectKey string) (*models.UserFlag, error)
	Get(ctx context.Context, username string) (*models.UserFlag, error)
}

var nowUTC = func() time.Time { return time.Now().UTC() }
