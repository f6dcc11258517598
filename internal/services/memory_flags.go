package services

import (
	"context"
	"sync"

	"github.com/campuscart/backend/internal/models"
)

// MemoryFlagStore is the in-process strike counter.
type MemoryFlagStore struct {
	mu    sync.Mutex
	flags map[string]*models.UserFlag
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{flags: make(map[string]*models.UserFlag)}
}

func (s *MemoryFlagStore) AddStrike(ctx context.Context, username, objectKey string) (*models.UserFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flags[username]
	if !ok {
		f = &models.UserFlag{Username: username}
		s.flags[username] = f
	}
	now := nowUTC()
	f.Strikes++
	if objectKey != "" {
		f.LastObject = objectKey
	}
	f.LastStrikeAt = now
	f.UpdatedAt = now
	cp := *f
	return &cp, nil
}

func (s *MemoryFlagStore) Get(ctx context.Context, username string) (*models.UserFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flags[username]
	if !ok {
		return &models.UserFlag{Username: username}, nil
	}
	cp := *f
	return &cp, nil
}
