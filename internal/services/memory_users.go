package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campuscart/backend/internal/models"
)

type userSnapshot struct {
	Users []*models.User `json:"users"`
}

// storedUser keeps the password hash in snapshots, which models.User hides from JSON.
type storedUser struct {
	models.User
	Hash string `json:"passwordHash"`
	Key  string `json:"photoKey,omitempty"`
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]*models.User // username -> user
	byEmail map[string]string       // email -> username
	snap    snapshot[[]storedUser]
}

func NewMemoryUserStore(dataDir string) (*MemoryUserStore, error) {
	snap, data, err := openSnapshot[[]storedUser](dataDir, "users.json")
	if err != nil {
		return nil, err
	}
	s := &MemoryUserStore{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		snap:    snap,
	}
	for _, su := range data {
		u := su.User
		u.PasswordHash = su.Hash
		u.PhotoKey = su.Key
		s.users[u.Username] = &u
		s.byEmail[strings.ToLower(u.Email)] = u.Username
	}
	return s, nil
}

func (s *MemoryUserStore) persist() {
	list := make([]storedUser, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, storedUser{User: *u, Hash: u.PasswordHash, Key: u.PhotoKey})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	s.snap.save(list)
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Username]; exists {
		return ErrUsernameExists
	}
	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrEmailExists
	}

	cp := *u
	s.users[cp.Username] = &cp
	s.byEmail[email] = cp.Username
	s.persist()
	return nil
}

func (s *MemoryUserStore) Get(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	cp := *s.users[username]
	return &cp, nil
}

func (s *MemoryUserStore) List(ctx context.Context, role models.Role) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0)
	for _, u := range s.users {
		if role == "" || u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[u.Username]
	if !exists {
		return ErrUserNotFound
	}
	oldEmail := strings.ToLower(existing.Email)
	newEmail := strings.ToLower(u.Email)
	if newEmail != oldEmail {
		if _, taken := s.byEmail[newEmail]; taken {
			return ErrEmailExists
		}
		delete(s.byEmail, oldEmail)
		s.byEmail[newEmail] = u.Username
	}

	cp := *u
	s.users[u.Username] = &cp
	s.persist()
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return ErrUserNotFound
	}
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.users, username)
	s.persist()
	return nil
}
