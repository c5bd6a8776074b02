//go:build unit || e2e

package dbtest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront-gateway/internal/domain/cart"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// ResetDB removes every persisted cart between sub tests.
func ResetDB(db DBLike) error {
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE cart_snapshots")
	return err
}

// SeedCart stores a cart directly, bypassing the gateway.
func SeedCart(t *testing.T, db DBLike, key string, c cart.Cart) {
	t.Helper()

	payload, err := json.Marshal(c)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(),
		"INSERT INTO cart_snapshots (storage_key, payload) VALUES ($1, $2) ON CONFLICT (storage_key) DO UPDATE SET payload = EXCLUDED.payload",
		key, payload)
	require.NoError(t, err)
}

// LoadCart reads the persisted cart of key; ok is false when no row exists.
func LoadCart(t *testing.T, db DBLike, key string) (c cart.Cart, ok bool) {
	t.Helper()

	var payload []byte
	err := db.QueryRow(context.Background(), "SELECT payload FROM cart_snapshots WHERE storage_key = $1", key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.Cart{}, false
	}
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &c))
	return c, true
}
