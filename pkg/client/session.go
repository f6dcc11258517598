// Package client is a typed Go client for the CampusCart API. It keeps the
// signed-in user in a Session, applies the listing status rules locally
// before submitting edits, and polls the inbox endpoints.
package client

import (
	"log"
	"sync"

	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/storage"
)

// Session is what the client remembers about the signed-in account.
type Session struct {
	Token        string      `json:"token"`
	Username     string      `json:"username"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Email        string      `json:"email"`
	Address      string      `json:"address,omitempty"`
	ContactNo    string      `json:"contactNo,omitempty"`
	ProfilePhoto string      `json:"profilePhoto,omitempty"`
	Role         models.Role `json:"role"`
}

// Valid reports whether the session can gate a route: both a token and a
// role are required.
func (s Session) Valid() bool {
	return s.Token != "" && s.Role != ""
}

// SessionStore guards the current session. Populate it with Login, clear it
// with Logout. A store built with a file keeps the session across restarts.
type SessionStore struct {
	mu      sync.RWMutex
	current Session
	file    *storage.JSONFile[Session]
}

// NewSessionStore returns an empty store kept only in memory.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// OpenSessionStore loads the session saved in dir, if any.
func OpenSessionStore(dir string) (*SessionStore, error) {
	file, err := storage.NewJSONFile[Session](dir, "session.json")
	if err != nil {
		return nil, err
	}
	s, err := file.Load()
	if err != nil {
		return nil, err
	}
	return &SessionStore{current: s, file: file}, nil
}

func (st *SessionStore) save() {
	if st.file == nil {
		return
	}
	if err := st.file.Save(st.current); err != nil {
		log.Printf("[client] save session err=%v", err)
	}
}

// Login replaces the session with the login response.
func (st *SessionStore) Login(auth models.AuthResponse) Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = Session{
		Token:        auth.Token,
		Username:     auth.Username,
		FirstName:    auth.FirstName,
		LastName:     auth.LastName,
		Email:        auth.Email,
		Address:      auth.Address,
		ContactNo:    auth.ContactNo,
		ProfilePhoto: auth.ProfilePhoto,
		Role:         auth.Role,
	}
	st.save()
	return st.current
}

func (st *SessionStore) Logout() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = Session{}
	st.save()
}

// Current returns a copy of the session and whether it is valid.
func (st *SessionStore) Current() (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current, st.current.Valid()
}

func (st *SessionStore) IsAuthenticated() bool {
	_, ok := st.Current()
	return ok
}

func (st *SessionStore) IsAdmin() bool {
	s, ok := st.Current()
	return ok && s.Role == models.RoleAdmin
}

// Update refreshes the profile fields after the user edits their record.
// The token and role are kept.
func (st *SessionStore) Update(u *models.User) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.current.Valid() || u.Username != st.current.Username {
		return
	}
	st.current.FirstName = u.FirstName
	st.current.LastName = u.LastName
	st.current.Email = u.Email
	st.current.Address = u.Address
	st.current.ContactNo = u.ContactNo
	st.current.ProfilePhoto = u.ProfilePhoto
	st.save()
}
