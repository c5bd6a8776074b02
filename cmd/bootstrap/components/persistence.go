package components

import (
	"context"
	"fmt"
	"log/slog"

	"storefront-gateway/internal/infra/cartstore"
	"storefront-gateway/internal/infra/db"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewCartSnapshotStore,
	),
)

// NewCartSnapshotStore opens the backing store selected by CART_STORE_DRIVER.
// Connections are only made for the driver in use.
func NewCartSnapshotStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.CartSnapshotStore, error) {
	switch cfg.Cart.Driver {
	case "memory":
		logger.Warn("cart store is in-memory, carts are lost on restart")
		return cartstore.NewMemoryStore(), nil
	case "postgres":
		return newPostgresStore(lc, cfg, logger)
	default:
		return newRedisStore(lc, cfg, logger), nil
	}
}

func newPostgresStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.CartSnapshotStore, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	store := cartstore.NewPostgresStore(pool, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureSchema(ctx)
		},
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})
	return store, nil
}

func newRedisStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) shared.CartSnapshotStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return cartstore.NewRedisStore(client, cfg.Cart.TTL, logger)
}
