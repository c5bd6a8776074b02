package cartstate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"storefront-gateway/internal/pkg/clock"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/shared"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Registry hands out the Store of each session, opening it from persistence on first use.
// A store untouched for CART_SESSION_IDLE is closed; its persisted cart stays and is
// loaded again on the next request.
type Registry struct {
	prefix  string
	persist shared.CartSnapshotStore
	clock   clock.Clock
	logger  *slog.Logger

	// mu serialises lookups and inserts; it is never held during persistence I/O.
	mu      sync.Mutex
	stores  *expirable.LRU[string, *Store]
	opening singleflight.Group

	closingMu sync.Mutex
	closing   map[string]chan struct{}
	releases  sync.WaitGroup
	onRelease func(sessionID string)
}

func NewRegistry(cfg config.CartConfig, persist shared.CartSnapshotStore, clk clock.Clock, logger *slog.Logger) *Registry {
	r := &Registry{
		prefix:  cfg.StorageKey,
		persist: persist,
		clock:   clk,
		logger:  logger,
		closing: make(map[string]chan struct{}),
	}
	r.stores = expirable.NewLRU[string, *Store](cfg.MaxSessions, r.evicted, cfg.SessionIdle)
	return r
}

// OnRelease registers fn to run for a session before its store is closed.
// It must be set before the registry is used.
func (r *Registry) OnRelease(fn func(sessionID string)) {
	r.onRelease = fn
}

// Key is the fixed storage key of a session's cart.
func (r *Registry) Key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

func (r *Registry) sessionID(key string) string {
	return strings.TrimPrefix(key, r.prefix+":")
}

// Len is the number of stores currently held in memory.
func (r *Registry) Len() int {
	return r.stores.Len()
}

func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	key := r.Key(sessionID)
	if s, ok := r.touch(key); ok {
		return s, nil
	}

	ch := r.opening.DoChan(key, func() (any, error) {
		if s, ok := r.touch(key); ok {
			return s, nil
		}
		return r.open(context.WithoutCancel(ctx), key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Store), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// touch returns the live store of key and restarts its idle timer.
func (r *Registry) touch(key string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores.Get(key)
	if !ok || s.isRetired() {
		return nil, false
	}
	r.stores.Add(key, s)
	if s.isRetired() {
		// expired between Get and Add; drop the re-added entry
		r.stores.Remove(key)
		return nil, false
	}
	return s, true
}

func (r *Registry) open(ctx context.Context, key string) (*Store, error) {
	// an expired entry is still held until swept; evict it so it gets closed
	r.mu.Lock()
	r.stores.Remove(key)
	r.mu.Unlock()
	r.waitClosed(key)

	s, err := Open(ctx, key, r.persist, r.clock, r.logger)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.stores.Add(key, s)
	r.mu.Unlock()
	return s, nil
}

// evicted runs under the cache lock, so closing happens on its own goroutine.
func (r *Registry) evicted(key string, s *Store) {
	if !s.retire() {
		return
	}

	done := make(chan struct{})
	r.closingMu.Lock()
	r.closing[key] = done
	r.closingMu.Unlock()

	r.releases.Add(1)
	go func() {
		defer r.releases.Done()
		defer close(done)

		if r.onRelease != nil {
			r.onRelease(r.sessionID(key))
		}
		s.Close()
		r.logger.Debug("cart store released", slog.String("cart_key", key))

		r.closingMu.Lock()
		if r.closing[key] == done {
			delete(r.closing, key)
		}
		r.closingMu.Unlock()
	}()
}

func (r *Registry) waitClosed(key string) {
	r.closingMu.Lock()
	done := r.closing[key]
	r.closingMu.Unlock()
	if done != nil {
		<-done
	}
}

// Release closes the in-memory store of a session. Persisted state is kept.
func (r *Registry) Release(sessionID string) {
	key := r.Key(sessionID)

	r.mu.Lock()
	r.stores.Remove(key)
	r.mu.Unlock()
	r.waitClosed(key)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.stores.Purge()
	r.mu.Unlock()
	r.releases.Wait()
}
