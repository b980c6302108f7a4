package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SessionToken proves continuity of one quiz session to the server.
type SessionToken struct {
	Token    string    `json:"token"`
	Mode     string    `json:"mode"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store holds the single session token for this run. The token is persisted
// to disk so a suspended process can resume the same session, and cleared
// when the session is left so a later run never reuses a stale identifier.
type Store struct {
	path    string
	current *SessionToken
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Acquire returns the active token for mode, minting one on first use.
// A persisted token for a different mode is discarded rather than reused.
func (s *Store) Acquire(mode string) (*SessionToken, error) {
	if s.current != nil && s.current.Mode == mode {
		return s.current, nil
	}

	if tok, err := s.load(); err == nil && tok.Mode == mode {
		s.current = tok
		return tok, nil
	}

	tok := &SessionToken{
		Token:    uuid.New().String(),
		Mode:     mode,
		IssuedAt: time.Now().UTC(),
	}
	if err := s.save(tok); err != nil {
		return nil, err
	}
	s.current = tok
	return tok, nil
}

// Current returns the active token, or nil if none was acquired.
func (s *Store) Current() *SessionToken {
	return s.current
}

// Clear forgets the token in memory and on disk.
func (s *Store) Clear() error {
	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *Store) load() (*SessionToken, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var tok SessionToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	if tok.Token == "" {
		return nil, errors.New("empty token")
	}
	return &tok, nil
}

func (s *Store) save(tok *SessionToken) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// DefaultPath resolves the token file path in priority order:
// 1. GEOSTREAK_STATE environment variable (directory)
// 2. $XDG_STATE_HOME/geostreak/session.json
// 3. ~/.local/state/geostreak/session.json
func DefaultPath() (string, error) {
	if d := os.Getenv("GEOSTREAK_STATE"); d != "" {
		return filepath.Join(d, "session.json"), nil
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}

	return filepath.Join(stateHome, "geostreak", "session.json"), nil
}
