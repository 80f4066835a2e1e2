package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis is a Deduper shared across instances via SET NX with expiry.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects to Redis at redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Seen(ctx context.Context, id string) bool {
	// SET NX is atomic: exactly one instance wins the first sighting.
	ok, err := r.client.SetNX(ctx, "dedup:"+id, 1, Window).Result()
	if err != nil {
		// Fail open: a Redis outage must not stop tracking.
		r.logger.Warn("dedup check failed, treating event as unseen", "error", err, "event_id", id)
		return false
	}
	return !ok
}
