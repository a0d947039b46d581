package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eduwrench/simclient/sim"
)

// ErrEmptyEmail is returned by Login when no address is given.
var ErrEmptyEmail = errors.New("email must not be empty")

// Service owns the single writable session value. Reads hand out copies.
type Service struct {
	mu      sync.RWMutex
	current Session
	store   Store
}

// NewService loads the persisted record from store. A nil store keeps the
// session in memory only.
func NewService(store Store) (*Service, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	rec, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Service{current: FromRecord(rec), store: store}, nil
}

// Current returns a copy of the session for the gate and the request builder.
func (s *Service) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.current
	return &cur
}

// Login authorizes the session for email. Logging in again with the same
// address is a no-op and does not touch the store.
func (s *Service) Login(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	next := Session{Authorized: true, Identity: sim.IdentityFromEmail(email)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == next {
		return nil
	}
	if err := s.store.Save(Record{Login: AuthorizedFlag, CurrentUser: email}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.current = next
	logrus.Infof("signed in as %s", next.Identity.UserName)
	return nil
}

// Logout clears the session. Logging out twice is a no-op.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == (Session{}) {
		return nil
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.current = Session{}
	logrus.Info("signed out")
	return nil
}
