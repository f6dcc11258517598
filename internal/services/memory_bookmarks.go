package services

import (
	"context"
	"sort"
	"sync"

	"github.com/campuscart/backend/internal/models"
)

type bookmarkKey struct {
	username string
	code     int
}

type MemoryBookmarkStore struct {
	mu    sync.RWMutex
	items map[bookmarkKey]*models.Bookmark
	snap  snapshot[[]*models.Bookmark]
}

func NewMemoryBookmarkStore(dataDir string) (*MemoryBookmarkStore, error) {
	snap, data, err := openSnapshot[[]*models.Bookmark](dataDir, "bookmarks.json")
	if err != nil {
		return nil, err
	}
	s := &MemoryBookmarkStore{items: make(map[bookmarkKey]*models.Bookmark), snap: snap}
	for _, b := range data {
		s.items[bookmarkKey{b.Username, b.ProductCode}] = b
	}
	return s, nil
}

func (s *MemoryBookmarkStore) persist() {
	list := make([]*models.Bookmark, 0, len(s.items))
	for _, b := range s.items {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	s.snap.save(list)
}

func (s *MemoryBookmarkStore) Add(ctx context.Context, b *models.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bookmarkKey{b.Username, b.ProductCode}
	if _, exists := s.items[key]; exists {
		return ErrAlreadyBookmarked
	}
	cp := *b
	s.items[key] = &cp
	s.persist()
	return nil
}

func (s *MemoryBookmarkStore) Remove(ctx context.Context, username string, code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bookmarkKey{username, code}
	if _, exists := s.items[key]; !exists {
		return ErrBookmarkNotFound
	}
	delete(s.items, key)
	s.persist()
	return nil
}

func (s *MemoryBookmarkStore) ListByUser(ctx context.Context, username string) ([]*models.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Bookmark, 0)
	for _, b := range s.items {
		if b.Username == username {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryBookmarkStore) DeleteByProduct(ctx context.Context, code int) error {
	return s.deleteWhere(func(b *models.Bookmark) bool { return b.ProductCode == code })
}

func (s *MemoryBookmarkStore) DeleteByUser(ctx context.Context, username string) error {
	return s.deleteWhere(func(b *models.Bookmark) bool { return b.Username == username })
}

func (s *MemoryBookmarkStore) deleteWhere(match func(*models.Bookmark) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.items {
		if match(b) {
			delete(s.items, key)
		}
	}
	s.persist()
	return nil
}
