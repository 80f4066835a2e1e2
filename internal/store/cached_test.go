package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biolink/internal/store"
)

// countingStore wraps a ConfigStore and counts backend reads.
type countingStore struct {
	store.ConfigStore
	tenantReads int
	userReads   int
}

func (c *countingStore) GetTenant(ctx context.Context, slug string) (*store.Config, error) {
	c.tenantReads++
	return c.ConfigStore.GetTenant(ctx, slug)
}

func (c *countingStore) GetUser(ctx context.Context, slug string) (*store.Config, error) {
	c.userReads++
	return c.ConfigStore.GetUser(ctx, slug)
}

func newCountingStore(t *testing.T) *countingStore {
	t.Helper()
	inner, err := store.NewJSONFile(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return &countingStore{ConfigStore: inner}
}

func TestCachedStore(t *testing.T) {
	t.Parallel()

	t.Run("repeated reads hit the cache", func(t *testing.T) {
		t.Parallel()

		backend := newCountingStore(t)
		cached := store.NewCached(backend, 16, time.Minute)

		for i := 0; i < 5; i++ {
			cfg, err := cached.GetTenant(context.Background(), store.DefaultTenant)
			require.NoError(t, err)
			require.NotNil(t, cfg)
		}
		assert.Equal(t, 1, backend.tenantReads)
	})

	t.Run("write invalidates the cached entry", func(t *testing.T) {
		t.Parallel()

		backend := newCountingStore(t)
		cached := store.NewCached(backend, 16, time.Minute)
		ctx := context.Background()

		_, err := cached.GetTenant(ctx, store.DefaultTenant)
		require.NoError(t, err)

		updated := store.DefaultConfig()
		updated.Theme = "midnight"
		require.NoError(t, cached.SetTenant(ctx, store.DefaultTenant, updated))

		cfg, err := cached.GetTenant(ctx, store.DefaultTenant)
		require.NoError(t, err)
		assert.Equal(t, "midnight", cfg.Theme)
		assert.Equal(t, 2, backend.tenantReads)
	})

	t.Run("misses are not cached", func(t *testing.T) {
		t.Parallel()

		backend := newCountingStore(t)
		cached := store.NewCached(backend, 16, time.Minute)
		ctx := context.Background()

		_, err := cached.GetUser(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = cached.GetUser(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Equal(t, 2, backend.userReads)
	})

	t.Run("delete invalidates", func(t *testing.T) {
		t.Parallel()

		backend := newCountingStore(t)
		cached := store.NewCached(backend, 16, time.Minute)
		ctx := context.Background()

		require.NoError(t, cached.SetUser(ctx, "alice", store.DefaultConfig()))
		_, err := cached.GetUser(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, cached.DeleteUser(ctx, "alice"))
		_, err = cached.GetUser(ctx, "alice")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
