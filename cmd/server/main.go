package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/biolink/internal/api"
	appconfig "github.com/dmitrymomot/biolink/internal/config"
	"github.com/dmitrymomot/biolink/internal/dedup"
	"github.com/dmitrymomot/biolink/internal/owner"
	"github.com/dmitrymomot/biolink/internal/provider"
	"github.com/dmitrymomot/biolink/internal/store"
	"github.com/dmitrymomot/biolink/internal/track"
	"github.com/dmitrymomot/biolink/pkg/config"
	"github.com/dmitrymomot/biolink/pkg/httpserver"
)

func main() {
	cfg := config.MustLoad[appconfig.Config]()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	ctx := context.Background()

	st, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error("store initialization failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	deduper, closeDedup, err := newDeduper(ctx, cfg, log)
	if err != nil {
		log.Error("dedup initialization failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeDedup()

	client := provider.NewClient(provider.WithTimeout(cfg.ProviderTimeout))
	svc := track.NewService(
		owner.NewResolver(st),
		deduper,
		provider.NewMeta(client, ""),
		provider.NewGA4(client, ""),
		provider.NewTikTok(client, ""),
		log,
	)

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin API disabled")
	}

	srv := httpserver.New(
		api.Router(svc, st, cfg.AdminToken, log),
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithShutdownTimeout(cfg.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	if err := srv.Run(ctx); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

// newStore picks the config store backend: Postgres when DATABASE_URL is
// set, the JSON file otherwise. Both get a read-through cache unless
// caching is disabled.
func newStore(ctx context.Context, cfg appconfig.Config, log *slog.Logger) (store.ConfigStore, func(), error) {
	var (
		st        store.ConfigStore
		closeFunc = func() {}
	)

	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres config store")
		st, closeFunc = pgStore, pgStore.Close
	} else {
		fileStore, err := store.NewJSONFile(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using json file config store", slog.String("path", cfg.DBPath))
		st = fileStore
	}

	if cfg.ConfigCacheSize > 0 {
		st = store.NewCached(st, cfg.ConfigCacheSize, cfg.ConfigCacheTTL)
	}
	return st, closeFunc, nil
}

// newDeduper picks the duplicate-suppression backend. Redis wins when
// configured so multiple instances share one window.
func newDeduper(ctx context.Context, cfg appconfig.Config, log *slog.Logger) (dedup.Deduper, func(), error) {
	if !cfg.DedupEnabled {
		return dedup.Noop{}, func() {}, nil
	}
	if cfg.RedisURL != "" {
		rd, err := dedup.NewRedis(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis deduplication")
		return rd, func() { _ = rd.Close() }, nil
	}
	log.Info("using in-memory deduplication", slog.Int("capacity", cfg.DedupCapacity))
	return dedup.NewMemory(cfg.DedupCapacity), func() {}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
