package store

import (
	"context"
	"time"

	"github.com/dmitrymomot/biolink/pkg/cache"
)

// CachedStore is a read-through cache in front of another ConfigStore.
// Owner resolution hits the store up to three times per tracked event, so
// a short TTL takes that load off the backend without making admin edits
// noticeably stale. Writes invalidate the local entry; other instances
// converge when their TTL lapses.
type CachedStore struct {
	next ConfigStore
	ttl  time.Duration

	tenants *cache.LRU[string, *Config]
	users   *cache.LRU[string, *Config]
}

// NewCached wraps next with an LRU cache of the given capacity and TTL.
func NewCached(next ConfigStore, capacity int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:    next,
		ttl:     ttl,
		tenants: cache.NewLRU[string, *Config](capacity),
		users:   cache.NewLRU[string, *Config](capacity),
	}
}

func (s *CachedStore) GetTenant(ctx context.Context, slug string) (*Config, error) {
	if cfg, ok := s.tenants.Get(slug); ok {
		return cfg, nil
	}
	cfg, err := s.next.GetTenant(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.tenants.PutTTL(slug, cfg, s.ttl)
	return cfg, nil
}

func (s *CachedStore) SetTenant(ctx context.Context, slug string, cfg *Config) error {
	if err := s.next.SetTenant(ctx, slug, cfg); err != nil {
		return err
	}
	s.tenants.Remove(slug)
	return nil
}

func (s *CachedStore) DeleteTenant(ctx context.Context, slug string) error {
	if err := s.next.DeleteTenant(ctx, slug); err != nil {
		return err
	}
	s.tenants.Remove(slug)
	return nil
}

func (s *CachedStore) ListTenants(ctx context.Context) ([]string, error) {
	return s.next.ListTenants(ctx)
}

func (s *CachedStore) GetUser(ctx context.Context, slug string) (*Config, error) {
	if cfg, ok := s.users.Get(slug); ok {
		return cfg, nil
	}
	cfg, err := s.next.GetUser(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.users.PutTTL(slug, cfg, s.ttl)
	return cfg, nil
}

func (s *CachedStore) SetUser(ctx context.Context, slug string, cfg *Config) error {
	if err := s.next.SetUser(ctx, slug, cfg); err != nil {
		return err
	}
	s.users.Remove(slug)
	return nil
}

func (s *CachedStore) DeleteUser(ctx context.Context, slug string) error {
	if err := s.next.DeleteUser(ctx, slug); err != nil {
		return err
	}
	s.users.Remove(slug)
	return nil
}

func (s *CachedStore) ListUsers(ctx context.Context) ([]string, error) {
	return s.next.ListUsers(ctx)
}

var _ ConfigStore = (*CachedStore)(nil)
