// Package config holds the application environment configuration.
package config

import "time"

// Config is the full server configuration, loaded from the environment
// via pkg/config.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL selects the Postgres config store when set; otherwise
	// the JSON file at DBPath is used.
	DatabaseURL string `env:"DATABASE_URL"`
	DBPath      string `env:"DB_PATH" envDefault:"./db.json"`

	// ConfigCacheSize/TTL control the read-through cache in front of the
	// config store. Zero size disables caching.
	ConfigCacheSize int           `env:"CONFIG_CACHE_SIZE" envDefault:"256"`
	ConfigCacheTTL  time.Duration `env:"CONFIG_CACHE_TTL" envDefault:"30s"`

	// AdminToken guards the admin API. Empty leaves the admin routes
	// unmounted.
	AdminToken string `env:"ADMIN_TOKEN"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	// DedupEnabled turns on duplicate-beacon suppression. RedisURL makes
	// it cross-instance; without it an in-process LRU is used.
	DedupEnabled  bool   `env:"DEDUP_ENABLED" envDefault:"false"`
	DedupCapacity int    `env:"DEDUP_CAPACITY" envDefault:"65536"`
	RedisURL      string `env:"REDIS_URL"`
}
