// Package session holds the bearer token that authenticates the admin console
// against the backend.
//
// A TokenStore persists a single token string. A Session is the in-process view
// of that store: it is initialised once from the persisted value and is only
// mutated through Establish and Teardown, which the auth package calls on login
// and logout. The API client and the route guard read it; nothing else does.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TokenStore persists at most one bearer token. The token is stored byte for
// byte; an empty token reads back as absent.
type TokenStore interface {
	// Get returns the stored token and whether one is present.
	Get() (string, bool)
	// Set replaces the stored token.
	Set(token string) error
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// MemoryStore is a TokenStore that lives only as long as the process.
type MemoryStore struct {
	token string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, bool) {
	return m.token, m.token != ""
}

func (m *MemoryStore) Set(token string) error {
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.token = ""
	return nil
}

// FileStore keeps the token in a single 0600 file so it survives restarts.
// It never expires the token; a stale token surfaces as a backend rejection.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path. The file need not exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("token file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get() (string, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (f *FileStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	// Write to a sibling and rename so a crash never leaves a truncated token.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
