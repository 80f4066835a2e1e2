package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileDB is the on-disk shape, compatible with the original db.json layout.
type fileDB struct {
	Tenants map[string]*Config `json:"tenants"`
	Users   map[string]*Config `json:"users"`
}

// JSONFileStore is a ConfigStore backed by a single JSON file. The whole
// database is held in memory and flushed to disk on every mutation; reads
// never touch the filesystem. Suited for single-instance deployments.
type JSONFileStore struct {
	path string
	mu   sync.RWMutex
	db   fileDB
}

// NewJSONFile opens (or creates) the JSON database at path. A missing file
// is initialized with the default tenant.
func NewJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.db = fileDB{
			Tenants: map[string]*Config{DefaultTenant: DefaultConfig()},
			Users:   map[string]*Config{},
		}
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading config database: %w", err)
	}

	if err := json.Unmarshal(data, &s.db); err != nil {
		return nil, fmt.Errorf("parsing config database: %w", err)
	}
	if s.db.Tenants == nil {
		s.db.Tenants = map[string]*Config{}
	}
	if s.db.Users == nil {
		s.db.Users = map[string]*Config{}
	}
	if _, ok := s.db.Tenants[DefaultTenant]; !ok {
		s.db.Tenants[DefaultTenant] = DefaultConfig()
	}
	return s, nil
}

// flush writes the database atomically via a temp file rename.
// Must be called with the write lock held.
func (s *JSONFileStore) flush() error {
	data, err := json.MarshalIndent(s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config database: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing config database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing config database: %w", err)
	}
	return nil
}

func (s *JSONFileStore) GetTenant(_ context.Context, slug string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.db.Tenants[slug]
	if !ok {
		return nil, fmt.Errorf("%w: tenant %q", ErrNotFound, slug)
	}
	return clone(cfg)
}

func (s *JSONFileStore) SetTenant(_ context.Context, slug string, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(cfg)
	if err != nil {
		return err
	}
	s.db.Tenants[slug] = stored
	return s.flush()
}

func (s *JSONFileStore) DeleteTenant(_ context.Context, slug string) error {
	if slug == DefaultTenant {
		return ErrDefaultTenantProtected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.db.Tenants[slug]; !ok {
		return fmt.Errorf("%w: tenant %q", ErrNotFound, slug)
	}
	delete(s.db.Tenants, slug)
	// A tenant takes its users with it.
	for userSlug, u := range s.db.Users {
		if u.Tenant == slug {
			delete(s.db.Users, userSlug)
		}
	}
	return s.flush()
}

func (s *JSONFileStore) ListTenants(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.db.Tenants), nil
}

func (s *JSONFileStore) GetUser(_ context.Context, slug string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.db.Users[slug]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, slug)
	}
	return clone(cfg)
}

func (s *JSONFileStore) SetUser(_ context.Context, slug string, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := clone(cfg)
	if err != nil {
		return err
	}
	s.db.Users[slug] = stored
	return s.flush()
}

func (s *JSONFileStore) DeleteUser(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.db.Users[slug]; !ok {
		return fmt.Errorf("%w: user %q", ErrNotFound, slug)
	}
	delete(s.db.Users, slug)
	return s.flush()
}

func (s *JSONFileStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.db.Users), nil
}

// clone deep-copies a config through JSON so callers never share memory
// with the store's internal state.
func clone(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("copying config: %w", err)
	}
	out := new(Config)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("copying config: %w", err)
	}
	return out, nil
}

func sortedKeys(m map[string]*Config) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ensure interface compliance
var _ ConfigStore = (*JSONFileStore)(nil)

// DefaultDBPath returns the conventional location of the JSON database
// relative to the working directory.
func DefaultDBPath() string {
	return filepath.Join(".", "db.json")
}
