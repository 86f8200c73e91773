package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultLanguage is used until the user picks one.
const DefaultLanguage = "en"

// Session is the state a signed-in app carries between screens: the auth
// token and the display preferences. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	token    string
	theme    Theme
	language string
}

// NewSession returns a signed-out session with default preferences.
func NewSession() *Session {
	return &Session{theme: ThemeLight, language: DefaultLanguage}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// SignedIn reports whether a token is held.
func (s *Session) SignedIn() bool { return s.Token() != "" }

// SignOut drops the token and keeps the preferences.
func (s *Session) SignOut() { s.SetToken("") }

func (s *Session) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Session) SetTheme(t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("unknown theme %q", t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Session) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	return s.theme
}

func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *Session) SetLanguage(lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return errors.New("language is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return nil
}

type sessionState struct {
	Token    string `yaml:"token,omitempty"`
	Theme    Theme  `yaml:"theme"`
	Language string `yaml:"language"`
}

func (s *Session) state() sessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionState{Token: s.token, Theme: s.theme, Language: s.language}
}

func sessionFrom(st sessionState) *Session {
	s := NewSession()
	s.token = st.Token
	if st.Theme == ThemeDark {
		s.theme = ThemeDark
	}
	if st.Language != "" {
		s.language = st.Language
	}
	return s
}

// SessionStore persists a session between runs.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
}

// FileSessionStore keeps the session as YAML on disk.
type FileSessionStore struct {
	Path string
}

// NewFileSessionStore stores the session under the user's config directory.
func NewFileSessionStore() (*FileSessionStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &FileSessionStore{Path: filepath.Join(dir, "bakery", "session.yaml")}, nil
}

// Load reads the session. A missing file yields a fresh session.
func (f *FileSessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var st sessionState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", f.Path, err)
	}
	return sessionFrom(st), nil
}

func (f *FileSessionStore) Save(s *Session) error {
	data, err := yaml.Marshal(s.state())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps the last saved session in memory.
type MemorySessionStore struct {
	mu    sync.Mutex
	state *sessionState
}

func (m *MemorySessionStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return NewSession(), nil
	}
	return sessionFrom(*m.state), nil
}

func (m *MemorySessionStore) Save(s *Session) error {
	st := s.state()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &st
	return nil
}
