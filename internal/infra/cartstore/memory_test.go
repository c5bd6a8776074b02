//go:build unit

package cartstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IsolatesCallerCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := sampleCart()
	require.NoError(t, store.Save(ctx, "k", c))

	*c.Items[0].Stock = 99
	c.Items[0].Quantity = 42

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 5, *got.Items[0].Stock)

	got.Items[1].Quantity = 7
	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Items[1].Quantity)
}

func TestMemoryStore_DeleteAndMissing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", sampleCart()))
	require.NoError(t, store.Delete(ctx, "k"))

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
