package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

type BookmarkService struct {
	bookmarks BookmarkStore
	products  ProductStore
}

func NewBookmarkService(bookmarks BookmarkStore, products ProductStore) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, products: products}
}

// Add bookmarks a listing the user can currently see.
func (s *BookmarkService) Add(ctx context.Context, username string, code int) (*models.Bookmark, error) {
	p, err := s.products.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !lifecycle.VisibleTo(p.Status, p.SellerUsername, username) {
		return nil, ErrProductNotFound
	}

	b := &models.Bookmark{
		ID:          uuid.NewString(),
		Username:    username,
		ProductCode: code,
		CreatedAt:   nowUTC(),
	}
	if err := s.bookmarks.Add(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookmarkService) Remove(ctx context.Context, username string, code int) error {
	return s.bookmarks.Remove(ctx, username, code)
}

// List returns the bookmarked listings still visible to the user, newest
// bookmark first.
func (s *BookmarkService) List(ctx context.Context, username string) ([]*models.Product, error) {
	marks, err := s.bookmarks.ListByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Product, 0, len(marks))
	for _, b := range marks {
		p, err := s.products.Get(ctx, b.ProductCode)
		if errors.Is(err, ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if lifecycle.VisibleTo(p.Status, p.SellerUsername, username) {
			out = append(out, p)
		}
	}
	return out, nil
}
