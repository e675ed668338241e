// Package session holds the signed-in user: the persisted token and user
// record, and the login, registration and logout operations that change them.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fakeyudi/cropguard/internal/api"
)

// Authenticator is the part of the API client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*api.AuthResponse, error)
}

// Manager is the in-memory session, hydrated from a Store on construction.
type Manager struct {
	auth  Authenticator
	store Store

	mu      sync.RWMutex
	current *Session
}

// NewManager hydrates the session from store before returning. An
// unreadable store is treated as signed out. The token is not checked
// against the backend here; the next protected request does that.
func NewManager(auth Authenticator, store Store) *Manager {
	m := &Manager{auth: auth, store: store}
	if s, err := store.Load(); err == nil {
		m.current = s
	}
	return m
}

// Login validates the credentials, signs in and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}
	res, err := m.auth.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return m.adopt(res)
}

// Register validates the form, creates the account and persists the session.
func (m *Manager) Register(ctx context.Context, r Registration) (*Session, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	res, err := m.auth.Register(ctx, strings.TrimSpace(r.Name), strings.TrimSpace(r.Email), r.Password)
	if err != nil {
		return nil, err
	}
	return m.adopt(res)
}

var errBadAuthResponse = errors.New("backend returned no token or user")

func (m *Manager) adopt(res *api.AuthResponse) (*Session, error) {
	s, err := New(res.Token, res.User)
	if err != nil {
		return nil, errBadAuthResponse
	}
	if err := m.store.Save(s); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

// Logout forgets the session in memory and on disk.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return m.store.Clear()
}

// Current returns the signed-in session. If the store was cleared behind the
// manager's back (a 401 seen by the API client), the session is dropped.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.store.Token() == "" {
		m.current = nil
	}
	return m.current, m.current != nil
}
