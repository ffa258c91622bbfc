// Package session persists the auth token between runs, the terminal
// analogue of the browser's local storage slot. Exactly one session is
// live per process; it survives restarts but is never shared across
// machines.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store holds the bearer token and mirrors it to a JSON file on every
// mutation.
type Store struct {
	mu    sync.Mutex
	token string
	path  string
}

type fileFormat struct {
	Token string `json:"token"`
}

// Load reads the session file at path. A missing file yields an empty
// (anonymous) session, not an error.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	s.token = f.Token
	return s, nil
}

// Token returns the held bearer token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores and persists a new token.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return s.save()
}

// Clear drops the token and removes the session file. Called on logout
// and on any 401 response.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Expired reports whether the stored token is a JWT whose expiry has
// passed. Signature verification is the server's job; this only short
// circuits a /auth/me round trip that is guaranteed to 401. Tokens that
// are not JWTs, or carry no expiry, are treated as live.
func (s *Store) Expired() bool {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (s *Store) save() error {
	data, err := json.Marshal(fileFormat{Token: s.token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
