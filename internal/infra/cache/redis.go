package cache

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect opens a client and pings it once.
func Connect(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis connected")
	return rdb, nil
}
