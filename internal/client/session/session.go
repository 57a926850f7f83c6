// Package session owns the client's authentication state: exactly one
// identity+credential pair, or none. The pair is written and cleared
// together, in memory and in the durable store; authentication status is
// always derived from the presence of both, never stored on its own.
package session

import (
	"errors"
	"sync"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// Session is the single source of truth for who is acting.
type Session struct {
	mu         sync.Mutex
	identity   *domain.Identity
	credential string
	generation uint64
	store      Store
}

// New creates a Session backed by the given store. Call Restore to pick up
// a previously persisted login.
func New(store Store) *Session {
	return &Session{store: store}
}

// Login atomically sets identity and credential, persisting them first. A
// failed store write is fatal to the login attempt: memory is left
// unchanged so no half-written session can be observed.
func (s *Session) Login(identity domain.Identity, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(identity, credential); err != nil {
		return err
	}

	id := identity
	s.identity = &id
	s.credential = credential
	s.generation++
	return nil
}

// Logout clears both fields from memory and durable storage. Idempotent:
// logging out while logged out is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil && s.credential == "" {
		return nil
	}

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.identity = nil
	s.credential = ""
	s.generation++
	return nil
}

// Restore loads the persisted pair on startup. A missing or malformed
// entry leaves the session unauthenticated; there is no partial recovery.
func (s *Session) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, credential, err := s.store.Load()
	if err != nil {
		s.identity = nil
		s.credential = ""
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}

	s.identity = &identity
	s.credential = credential
	s.generation++
	return nil
}

// IsAuthenticated derives authentication status from the presence of both
// fields. Never cached.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.credential != ""
}

// Identity returns the current identity, or false when logged out.
func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Credential returns the bearer credential, empty when logged out.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Generation increments on every login, logout, and successful restore.
// In-flight operations record it at launch and discard their results if it
// has moved on by completion time.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
