package store

import (
	"context"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis when an address is configured; a nil
// client means Redis-backed features degrade to in-process behavior.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, using in-process storage")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client
}

// NewStorage picks Redis-backed storage when available.
func NewStorage(client *redis.Client) Storage {
	if client == nil {
		return NewMemory()
	}
	return NewRedis(client)
}

// Module wires the key-value storage layer.
var Module = fx.Module("store",
	fx.Provide(
		NewRedisClient,
		NewStorage,
	),
)
