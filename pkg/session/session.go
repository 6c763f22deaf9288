// Package session holds the admin console's state: the signed-in user, the
// display theme and the last visitor listing. It is persisted to a JSON file
// so separate CLI invocations share a login.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"gatepass/pkg/model"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const EnvSessionFile = "GATEPASS_SESSION_FILE"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type snapshot struct {
	Token    string               `json:"token,omitempty"`
	User     *User                `json:"user,omitempty"`
	Theme    Theme                `json:"theme,omitempty"`
	Visitors []model.VisitorGroup `json:"visitors,omitempty"`
}

// Store is what the CLI needs from the session.
type Store interface {
	Hydrate() error
	Login(token string, user User) error
	Logout() error
	Authenticated() bool
	Token() string
	User() (User, bool)
	SetTheme(theme Theme) error
	Theme() Theme
	SetVisitors(groups []model.VisitorGroup) error
	Visitors() []model.VisitorGroup
}

type State struct {
	mu   sync.RWMutex
	path string
	data snapshot
}

var _ Store = (*State)(nil)

func New(path string) *State {
	return &State{path: path, data: snapshot{Theme: ThemeLight}}
}

// DefaultPath is $GATEPASS_SESSION_FILE or ~/.gatepass/session.json.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvSessionFile); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".gatepass", "session.json"), nil
}

// Hydrate replaces the in-memory state with the persisted one. A missing
// file leaves an empty session.
func (s *State) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = snapshot{Theme: ThemeLight}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var data snapshot
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode session %s: %w", s.path, err)
	}
	if data.Theme == "" {
		data.Theme = ThemeLight
	}
	s.data = data
	return nil
}

func (s *State) Login(token string, user User) error {
	if token == "" {
		return errors.New("token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Token = token
	s.data.User = &user
	s.data.Visitors = nil
	return s.persist()
}

// Logout forgets everything, including the theme, and removes the file.
func (s *State) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = snapshot{Theme: ThemeLight}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Token != ""
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Token
}

func (s *State) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.User == nil {
		return User{}, false
	}
	return *s.data.User, true
}

func (s *State) SetTheme(theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Theme = theme
	return s.persist()
}

func (s *State) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Theme
}

func (s *State) SetVisitors(groups []model.VisitorGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Visitors = slices.Clone(groups)
	return s.persist()
}

// Visitors returns a copy of the last listing.
func (s *State) Visitors() []model.VisitorGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.data.Visitors)
	if out == nil {
		out = []model.VisitorGroup{}
	}
	return out
}

// persist writes through a temp file so a crash never leaves half a session.
// Callers hold the write lock.
func (s *State) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}
