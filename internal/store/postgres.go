package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	kindTenant = "tenant"
	kindUser   = "user"
)

// PostgresStore is a ConfigStore backed by a single jsonb table, for
// deployments where multiple instances share configuration.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to Postgres, ensures the schema, and seeds the
// default tenant if the table is empty.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS page_configs (
			kind       TEXT NOT NULL,
			slug       TEXT NOT NULL,
			config     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, slug)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating page_configs table: %w", err)
	}

	seed, err := json.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO page_configs (kind, slug, config)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, slug) DO NOTHING
	`, kindTenant, DefaultTenant, seed)
	if err != nil {
		return fmt.Errorf("seeding default tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) get(ctx context.Context, kind, slug string) (*Config, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT config FROM page_configs WHERE kind = $1 AND slug = $2`,
		kind, slug,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s %q: %w", kind, slug, err)
	}

	cfg := new(Config)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s %q: %w", kind, slug, err)
	}
	return cfg, nil
}

func (s *PostgresStore) set(ctx context.Context, kind, slug string, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", kind, slug, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO page_configs (kind, slug, config)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, slug) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
	`, kind, slug, data)
	if err != nil {
		return fmt.Errorf("saving %s %q: %w", kind, slug, err)
	}
	return nil
}

func (s *PostgresStore) delete(ctx context.Context, kind, slug string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM page_configs WHERE kind = $1 AND slug = $2`,
		kind, slug,
	)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", kind, slug, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, slug)
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT slug FROM page_configs WHERE kind = $1 ORDER BY slug`,
		kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", kind, err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scanning %s slug: %w", kind, err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (s *PostgresStore) GetTenant(ctx context.Context, slug string) (*Config, error) {
	return s.get(ctx, kindTenant, slug)
}

func (s *PostgresStore) SetTenant(ctx context.Context, slug string, cfg *Config) error {
	return s.set(ctx, kindTenant, slug, cfg)
}

func (s *PostgresStore) DeleteTenant(ctx context.Context, slug string) error {
	if slug == DefaultTenant {
		return ErrDefaultTenantProtected
	}
	if err := s.delete(ctx, kindTenant, slug); err != nil {
		return err
	}
	// A tenant takes its users with it.
	_, err := s.pool.Exec(ctx,
		`DELETE FROM page_configs WHERE kind = $1 AND config->>'tenant' = $2`,
		kindUser, slug,
	)
	if err != nil {
		return fmt.Errorf("deleting users of tenant %q: %w", slug, err)
	}
	return nil
}

func (s *PostgresStore) ListTenants(ctx context.Context) ([]string, error) {
	return s.list(ctx, kindTenant)
}

func (s *PostgresStore) GetUser(ctx context.Context, slug string) (*Config, error) {
	return s.get(ctx, kindUser, slug)
}

func (s *PostgresStore) SetUser(ctx context.Context, slug string, cfg *Config) error {
	return s.set(ctx, kindUser, slug, cfg)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, slug string) error {
	return s.delete(ctx, kindUser, slug)
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]string, error) {
	return s.list(ctx, kindUser)
}

var _ ConfigStore = (*PostgresStore)(nil)
