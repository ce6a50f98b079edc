// Package session holds the signed-in identity and its credential. The
// pair is persisted so a restarted client picks up where it left off, and
// the credential is handed to the API client for every request.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/models"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is the durable key/value backend, satisfied by
// storage.LocalStorage.
type Storage interface {
	Load() error
	Save() error
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Session is an authenticated identity with its bearer credential.
type Session struct {
	User  models.User
	Token string
}

// ErrInvalid is returned by Login for an incomplete session.
var ErrInvalid = errors.New("session needs both a credential and an identity")

// Store is the process-wide session holder. Credential and identity are
// always set or cleared together.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	log     *zap.Logger
	now     func() time.Time
	current *Session
	loading bool
}

// NewStore returns a Store in the loading state. Call Init to resolve it.
func NewStore(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{storage: storage, log: log, now: time.Now, loading: true}
}

// Init reconstructs the session from storage. Missing, malformed, or
// expired data means no session; malformed and expired data is also
// cleared from storage. Only an I/O failure while clearing is returned.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	s.current = nil
	if err := s.storage.Load(); err != nil {
		s.log.Warn("session storage unreadable, starting signed out", zap.Error(err))
		return s.clearLocked()
	}

	token, hasToken := s.storage.Get(KeyToken)
	raw, hasUser := s.storage.Get(KeyUser)
	if token == "" && raw == "" {
		return nil
	}
	if !hasToken || !hasUser || token == "" || raw == "" {
		s.log.Warn("session storage holds half a session, clearing it")
		return s.clearLocked()
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("stored identity is malformed, clearing session", zap.Error(err))
		return s.clearLocked()
	}
	if user.ID == "" {
		s.log.Warn("stored identity has no id, clearing session")
		return s.clearLocked()
	}
	if exp, ok := expiry(token); ok && !exp.After(s.now()) {
		s.log.Info("stored credential expired, clearing session", zap.Time("expired_at", exp))
		return s.clearLocked()
	}

	s.current = &Session{User: user, Token: token}
	return nil
}

// Login stores the pair durably and makes it current.
func (s *Store) Login(token string, user models.User) error {
	if token == "" || user.ID == "" {
		return ErrInvalid
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Set(KeyToken, token)
	s.storage.Set(KeyUser, string(raw))
	if err := s.storage.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = &Session{User: user, Token: token}
	s.loading = false
	return nil
}

// Logout forgets the session in memory and in storage.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return s.clearLocked()
}

// clearLocked empties then removes both entries and saves.
func (s *Store) clearLocked() error {
	s.storage.Set(KeyToken, "")
	s.storage.Set(KeyUser, "")
	s.storage.Remove(KeyToken)
	s.storage.Remove(KeyUser)
	if err := s.storage.Save(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Snapshot returns the current session, if any.
func (s *Store) Snapshot() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Loading reports whether Init has not finished yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Authenticated reports whether a session is current.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Token returns the current credential, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// ExpiresAt returns the credential's expiry when it is a JWT carrying exp.
func (s *Store) ExpiresAt() (time.Time, bool) {
	return expiry(s.Token())
}

// expiry reads exp without verifying the signature. The client never
// holds the signing key; the API remains the judge of validity.
func expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
