// Package session holds the console's credential state and the gate that
// decides, from backend reachability and authentication, what may be shown.
package session

import (
	"fmt"
	"sync"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// Session is the process-wide credential state. Every outgoing request reads
// the token; only login and logout write it.
type Session struct {
	mu         sync.RWMutex
	token      string
	user       *models.Profile
	remembered string
	store      Store
}

// New loads any persisted credential from store.
func New(store Store) (*Session, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	p, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return &Session{token: p.AdminToken, remembered: p.RememberedEmail, store: store}, nil
}

// Token returns the bearer credential, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores and persists a new credential. The previous user is
// forgotten until the token is validated again.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = nil
	return s.persistLocked()
}

// ClearToken drops the credential and the user.
func (s *Session) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return s.persistLocked()
}

// SetUser records the profile that validated the current token.
func (s *Session) SetUser(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.user = nil
		return
	}
	cp := *p
	cp.Token = ""
	s.user = &cp
}

// User returns a copy of the validated profile, or nil.
func (s *Session) User() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Authenticated holds when a token is present, it was validated by a profile
// fetch, and that profile is an administrator.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.IsAdmin()
}

// Remember persists the email shown pre-filled on the next login. An empty
// email forgets it. Passwords are never persisted.
func (s *Session) Remember(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remembered = email
	return s.persistLocked()
}

// RememberedEmail returns the email saved by "remember me".
func (s *Session) RememberedEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remembered
}

func (s *Session) persistLocked() error {
	if err := s.store.Save(Persisted{AdminToken: s.token, RememberedEmail: s.remembered}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
