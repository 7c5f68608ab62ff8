package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zilaportal/portal/internal/domain/rules"
)

// Tokens is what a TokenStore persists between runs.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (t Tokens) empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// TokenStore persists the session credential outside the process.
type TokenStore interface {
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

func (s *MemoryTokenStore) Save(t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return nil
}

// FileTokenStore keeps tokens in a JSON file readable only by the owner.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (Tokens, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tokens{}, nil
		}
		return Tokens{}, fmt.Errorf("read token file: %w", err)
	}
	var t Tokens
	if err := json.Unmarshal(data, &t); err != nil {
		return Tokens{}, fmt.Errorf("decode token file: %w", err)
	}
	return t, nil
}

func (s *FileTokenStore) Save(t Tokens) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Session is the caller's identity. It is set on login, replaced on refresh
// and cleared on logout or any 401. Predicates answer from the last user the
// server returned and are advisory; the server decides every action.
type Session struct {
	mu     sync.RWMutex
	store  TokenStore
	tokens Tokens
	user   *User
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Session{store: store}
}

func (s *Session) restore() error {
	t, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
	return nil
}

func (s *Session) set(t Tokens, user User) error {
	s.mu.Lock()
	s.tokens = t
	s.user = &user
	s.mu.Unlock()
	return s.store.Save(t)
}

func (s *Session) setUser(user User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.tokens = Tokens{}
	s.user = nil
	s.mu.Unlock()
	_ = s.store.Clear()
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

func (s *Session) refreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.RefreshToken
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.tokens.empty()
}

// User returns the signed in user, if the session has loaded one.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) principal() rules.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return rules.Principal{}
	}
	return s.user.Principal()
}

func (s *Session) IsAdmin() bool {
	p := s.principal()
	return p.IsAdmin() && p.Active()
}

func (s *Session) CanModerate() bool {
	p := s.principal()
	return p.IsModerator() && p.Active()
}

func (s *Session) HasType(t UserType) bool {
	return s.principal().HasType(t)
}

// CanCreate reports whether the session user may submit content of kind.
func (s *Session) CanCreate(kind Kind) bool {
	return rules.Authorize(s.principal(), rules.Action{Verb: rules.VerbCreate, Resource: rules.KindResource(kind)}) == nil
}
