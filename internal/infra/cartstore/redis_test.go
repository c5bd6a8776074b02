//go:build unit

package cartstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour, discardLogger()), mr
}

func sampleCart() cart.Cart {
	stock := 5
	return cart.Cart{
		Items: []cart.Item{
			{ID: "line-1", ProductID: "p-1", Name: "Nón lá", Price: decimal.NewFromInt(120000), Quantity: 2, Type: cart.ItemTypeProduct, Stock: &stock},
			{ID: "line-2", ProductID: "t-1", Name: "Hạ Long 2N1Đ", Price: decimal.NewFromInt(2500000), Quantity: 3, Type: cart.ItemTypeTour},
		},
		UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	key := "cart-storage:user-1"

	require.NoError(t, store.Save(ctx, key, sampleCart()))
	assert.True(t, mr.Exists(key))

	ttl := mr.TTL(key)
	assert.Equal(t, time.Hour, ttl)

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleCart(), got); diff != "" {
		t.Errorf("loaded cart mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisStore_LoadMissingKeyReturnsEmptyCart(t *testing.T) {
	store, _ := setupTestRedis(t)

	got, err := store.Load(context.Background(), "cart-storage:nobody")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestRedisStore_LoadCorruptPayload(t *testing.T) {
	store, mr := setupTestRedis(t)
	key := "cart-storage:user-2"

	data, err := json.Marshal(sampleCart())
	require.NoError(t, err)
	require.NoError(t, mr.Set(key, string(data[:10])))

	_, err = store.Load(context.Background(), key)
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindCorruptSnapshot))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	key := "cart-storage:user-3"

	require.NoError(t, store.Save(ctx, key, sampleCart()))
	require.NoError(t, store.Delete(ctx, key))
	assert.False(t, mr.Exists(key))

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, key))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Load(context.Background(), "cart-storage:user-4")
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindStoreFailure))
}
