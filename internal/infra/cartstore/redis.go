package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/infra"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each cart as one JSON value. The TTL is refreshed on every save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context, key string) (cart.Cart, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Cart{}, nil
	}
	if err != nil {
		return cart.Cart{}, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "redis get cart", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return cart.Cart{}, infra.WrapRepoErr(s.logger, infra.KindCorruptSnapshot, "unmarshal cart", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, c cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindCorruptSnapshot, "marshal cart", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "redis set cart", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "redis delete cart", err)
	}
	return nil
}
