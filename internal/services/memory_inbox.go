package services

import (
	"context"
	"sort"
	"sync"

	"github.com/campuscart/backend/internal/models"
)

type MemoryNotificationStore struct {
	mu    sync.RWMutex
	items map[string]*models.Notification
	snap  snapshot[[]*models.Notification]
}

func NewMemoryNotificationStore(dataDir string) (*MemoryNotificationStore, error) {
	snap, data, err := openSnapshot[[]*models.Notification](dataDir, "notifications.json")
	if err != nil {
		return nil, err
	}
	s := &MemoryNotificationStore{items: make(map[string]*models.Notification), snap: snap}
	for _, n := range data {
		s.items[n.ID] = n
	}
	return s, nil
}

func (s *MemoryNotificationStore) persist() {
	list := make([]*models.Notification, 0, len(s.items))
	for _, n := range s.items {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	s.snap.save(list)
}

func (s *MemoryNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	s.items[cp.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryNotificationStore) ListByUser(ctx context.Context, username string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0)
	for _, n := range s.items {
		if n.Username == username {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryNotificationStore) MarkRead(ctx context.Context, id, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok || n.Username != username {
		return ErrNotificationNotFound
	}
	n.Read = true
	s.persist()
	return nil
}

func (s *MemoryNotificationStore) MarkAllRead(ctx context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if n.Username == username && !n.Read {
			n.Read = true
			count++
		}
	}
	if count > 0 {
		s.persist()
	}
	return count, nil
}

func (s *MemoryNotificationStore) DeleteByUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.items {
		if n.Username == username {
			delete(s.items, id)
		}
	}
	s.persist()
	return nil
}

type MemoryMessageStore struct {
	mu    sync.RWMutex
	items map[string]*models.Message
	snap  snapshot[[]*models.Message]
}

func NewMemoryMessageStore(dataDir string) (*MemoryMessageStore, error) {
	snap, data, err := openSnapshot[[]*models.Message](dataDir, "messages.json")
	if err != nil {
		return nil, err
	}
	s := &MemoryMessageStore{items: make(map[string]*models.Message), snap: snap}
	for _, m := range data {
		s.items[m.ID] = m
	}
	return s, nil
}

func (s *MemoryMessageStore) persist() {
	s.snap.save(s.collect(func(*models.Message) bool { return true }))
}

// collect returns copies of matching messages, oldest first. Callers hold mu.
func (s *MemoryMessageStore) collect(keep func(*models.Message) bool) []*models.Message {
	out := make([]*models.Message, 0)
	for _, m := range s.items {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryMessageStore) Create(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	s.items[cp.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryMessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.items[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryMessageStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.items[id]
	if !ok {
		return ErrMessageNotFound
	}
	m.Read = true
	s.persist()
	return nil
}

func (s *MemoryMessageStore) Between(ctx context.Context, a, b string, productCode *int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(m *models.Message) bool {
		pair := (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
		if !pair {
			return false
		}
		if productCode == nil {
			return true
		}
		return m.ProductCode != nil && *m.ProductCode == *productCode
	}), nil
}

func (s *MemoryMessageStore) Involving(ctx context.Context, username string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(m *models.Message) bool {
		return m.Sender == username || m.Receiver == username
	}), nil
}

func (s *MemoryMessageStore) Unread(ctx context.Context, receiver string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(m *models.Message) bool {
		return m.Receiver == receiver && !m.Read
	}), nil
}

func (s *MemoryMessageStore) CountUnread(ctx context.Context, receiver string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.items {
		if m.Receiver == receiver && !m.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryMessageStore) DeleteByUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.items {
		if m.Sender == username || m.Receiver == username {
			delete(s.items, id)
		}
	}
	s.persist()
	return nil
}
