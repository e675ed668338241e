package session

import (
	"errors"

	"github.com/fakeyudi/cropguard/internal/api"
)

// Session is a signed-in user and the bearer token the backend issued for
// them. A Session always carries both; being signed out is represented by
// the absence of a Session (ErrNoSession), never by a half-filled one.
type Session struct {
	User  api.User
	Token string
}

var errIncomplete = errors.New("session requires both a token and a user")

// New builds a Session, rejecting a missing token or an unnamed user.
func New(token string, user api.User) (*Session, error) {
	if token == "" || (user.ID == "" && user.Name == "" && user.Email == "") {
		return nil, errIncomplete
	}
	return &Session{User: user, Token: token}, nil
}

// DisplayName is what the navbar shows for the signed-in user.
func (s *Session) DisplayName() string {
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}
