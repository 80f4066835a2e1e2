package store

import "context"

// DefaultTenant is the slug of the tenant that always exists and serves as
// the resolution fallback of last resort. It cannot be deleted.
const DefaultTenant = "default"

// ConfigStore persists tenant and user page configurations. Tracking and
// sanitation logic depend only on this interface, never on a concrete
// backend, so the JSON-file store can be swapped for Postgres without
// touching them.
type ConfigStore interface {
	GetTenant(ctx context.Context, slug string) (*Config, error)
	SetTenant(ctx context.Context, slug string, cfg *Config) error
	DeleteTenant(ctx context.Context, slug string) error
	ListTenants(ctx context.Context) ([]string, error)

	GetUser(ctx context.Context, slug string) (*Config, error)
	SetUser(ctx context.Context, slug string, cfg *Config) error
	DeleteUser(ctx context.Context, slug string) error
	ListUsers(ctx context.Context) ([]string, error)
}

// DefaultConfig returns the configuration a fresh tenant starts with and
// the fallback used when owner resolution finds nothing.
func DefaultConfig() *Config {
	return &Config{
		Theme: "violet",
		Profile: Profile{
			DisplayName: "Bio Link",
			Bio:         "All official links in one place",
			Background:  Background{Type: "gradient", From: "#0f172a", To: "#020617"},
		},
		PixelsAdvanced: PixelsAdvanced{
			Facebook: []FacebookCredential{},
			GA4:      []GA4Credential{},
			TikTok:   []TikTokCredential{},
		},
	}
}
