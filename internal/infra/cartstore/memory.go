package cartstore

import (
	"context"
	"sync"

	"storefront-gateway/internal/domain/cart"
)

// MemoryStore keeps snapshots in process. Used by tests and CART_STORE_DRIVER=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]cart.Cart)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[key].Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = c.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
