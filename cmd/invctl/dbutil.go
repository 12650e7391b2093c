package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/configuration"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
)

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	return pool, nil
}

func openRecoveryStore(ctx context.Context) (*recovery.Store, error) {
	conf := configuration.Use()

	var backend kv.Store
	switch conf.Recovery.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: conf.RedisURL})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}
		backend = kv.NewRedisStore(client, "ndv")
	default:
		// Memory-backed sessions live inside the server process; a separate
		// CLI process cannot see them.
		return nil, fmt.Errorf("recovery backend %q is not reachable from the CLI, set RECOVERY_BACKEND=redis", conf.Recovery.Backend)
	}

	return recovery.NewStore(backend, recovery.Options{
		TTL:       conf.Recovery.TTL,
		MaxLogs:   conf.Recovery.MaxLogs,
		MaxSample: conf.Recovery.MaxSample,
	}), nil
}
