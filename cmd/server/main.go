package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/internal/server"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/configuration"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	var store kv.Store
	switch conf.Recovery.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: conf.RedisURL})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		store = kv.NewRedisStore(client, "ndv")
		logger.Info("session recovery backed by redis")
	default:
		store = kv.NewMemoryStore()
		logger.Info("session recovery backed by in-process memory")
	}

	bus := eventbus.NewEventPublisher(logger)
	inventory.RegisterObservers(bus, logger)

	controllers := inventory.Controllers(inventory.Dependencies{
		Configuration: conf,
		EventBus:      bus,
		KV:            store,
	})
	if conf.Prometheus.Enabled {
		controllers = append(controllers, metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance := server.New(server.Options{
		Logger:        logger,
		Configuration: conf,
		Pool:          pool,
		Controllers:   controllers,
	})
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
