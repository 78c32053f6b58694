package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/console-go/config"
)

// ConnectRedis connects and pings the Redis instance backing the
// credential store.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("connected to redis", "addr", cfg.Addr, "db", cfg.DB)
	}
	return client, nil
}
