package session

import (
	"errors"
	"fmt"
)

// ErrEmptyToken is returned when Establish is called without a token.
var ErrEmptyToken = errors.New("session token cannot be empty")

// Session is the authentication state of one console user. Token presence is
// the only authentication signal: there is no expiry and no refresh token.
//
// A Session is not safe for concurrent mutation. The web console builds one
// per request and the CLI one per invocation.
type Session struct {
	store TokenStore
	token string
}

// Init reads the persisted token, if any, and returns the session over store.
func Init(store TokenStore) *Session {
	s := &Session{store: store}
	if token, ok := store.Get(); ok {
		s.token = token
	}
	return s
}

// Token returns the bearer token and whether one is present.
func (s *Session) Token() (string, bool) {
	if s == nil || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Authenticated reports whether a token is present. It does not check that
// the backend still accepts it.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Establish persists token and makes it the session's only token.
// Called by the auth service after a successful login.
func (s *Session) Establish(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.store.Set(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.token = token
	return nil
}

// Teardown forgets the token in memory and in the store.
// Called by the auth service on logout.
func (s *Session) Teardown() error {
	s.token = ""
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
