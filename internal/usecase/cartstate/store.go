// Package cartstate owns the in-process cart of each session. Every read and
// write goes through a single goroutine per cart, so concurrent callers (HTTP
// handlers, the stock watcher) never interleave partial updates.
package cartstate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/pkg/clock"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/usecase/shared"
)

// Snapshot is a consistent copy of the cart. Epoch changes every time the cart
// is cleared; stock results computed against an older epoch are discarded.
type Snapshot struct {
	Key   string
	Cart  cart.Cart
	Epoch uint64
}

type state struct {
	cart  cart.Cart
	epoch uint64
}

type mutation func(st *state) (value any, changed bool, err error)

type command struct {
	ctx   context.Context
	fn    mutation
	reply chan reply
}

type reply struct {
	value any
	err   error
}

type Store struct {
	key     string
	persist shared.CartSnapshotStore
	clock   clock.Clock
	logger  *slog.Logger

	cmds      chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	retired   atomic.Bool
}

// Open loads the persisted cart for key and starts the writer goroutine.
func Open(ctx context.Context, key string, persist shared.CartSnapshotStore, clk clock.Clock, logger *slog.Logger) (*Store, error) {
	c, err := persist.Load(ctx, key)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "load cart"), errs.ErrPersistenceFailed)
	}

	s := &Store{
		key:     key,
		persist: persist,
		clock:   clk,
		logger:  logger.With(slog.String("cart_key", key)),
		cmds:    make(chan command),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.loop(state{cart: c})
	return s, nil
}

func (s *Store) Key() string {
	return s.key
}

// Close stops the writer goroutine. Pending and later calls fail with ErrCartStoreClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

// retire marks the store as leaving the registry. It reports false if it already was.
func (s *Store) retire() bool {
	return s.retired.CompareAndSwap(false, true)
}

func (s *Store) isRetired() bool {
	return s.retired.Load()
}

func (s *Store) loop(st state) {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.cmds:
			s.handle(&st, cmd)
		case <-s.quit:
			return
		}
	}
}

func (s *Store) handle(st *state, cmd command) {
	// the caller may have been torn down while the command was queued
	if err := cmd.ctx.Err(); err != nil {
		cmd.reply <- reply{err: err}
		return
	}

	before := state{cart: st.cart.Clone(), epoch: st.epoch}

	value, changed, err := cmd.fn(st)
	if err == nil && changed {
		st.cart.UpdatedAt = s.clock.Now()
		if perr := s.save(cmd.ctx, st.cart); perr != nil {
			s.logger.Error("failed to persist cart, reverting", slog.String("error", perr.Error()))
			*st = before
			value, err = nil, errs.Mark(perr, errs.ErrPersistenceFailed)
		}
	}
	cmd.reply <- reply{value: value, err: err}
}

func (s *Store) save(ctx context.Context, c cart.Cart) error {
	if c.IsEmpty() {
		return s.persist.Delete(ctx, s.key)
	}
	return s.persist.Save(ctx, s.key, c)
}

func (s *Store) submit(ctx context.Context, fn mutation) (any, error) {
	cmd := command{ctx: ctx, fn: fn, reply: make(chan reply, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.quit:
		return nil, errs.ErrCartStoreClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func run[T any](ctx context.Context, s *Store, fn func(st *state) (T, bool, error)) (T, error) {
	var zero T
	v, err := s.submit(ctx, func(st *state) (any, bool, error) {
		out, changed, err := fn(st)
		return out, changed, err
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	return run(ctx, s, func(st *state) (Snapshot, bool, error) {
		return Snapshot{Key: s.key, Cart: st.cart.Clone(), Epoch: st.epoch}, false, nil
	})
}

func (s *Store) Add(ctx context.Context, item cart.Item) (cart.Item, error) {
	return run(ctx, s, func(st *state) (cart.Item, bool, error) {
		line, err := st.cart.Add(item)
		if err != nil {
			return cart.Item{}, false, mapDomainErr(err)
		}
		return line, true, nil
	})
}

func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) (cart.Item, error) {
	return run(ctx, s, func(st *state) (cart.Item, bool, error) {
		line, err := st.cart.SetQuantity(itemID, quantity)
		if err != nil {
			return cart.Item{}, false, mapDomainErr(err)
		}
		return line, true, nil
	})
}

func (s *Store) Remove(ctx context.Context, itemID string) error {
	_, err := run(ctx, s, func(st *state) (struct{}, bool, error) {
		if !st.cart.Remove(itemID) {
			return struct{}{}, false, errs.ErrCartItemNotFound
		}
		return struct{}{}, true, nil
	})
	return err
}

// Clear empties the cart (checkout completion, logout) and starts a new epoch.
func (s *Store) Clear(ctx context.Context) error {
	_, err := run(ctx, s, func(st *state) (struct{}, bool, error) {
		st.cart.Items = nil
		st.epoch++
		return struct{}{}, true, nil
	})
	return err
}

// ApplyStock writes a fetched stock level for one line if the cart is still in
// the epoch the lookup was started in. applied is false when the result was discarded.
func (s *Store) ApplyStock(ctx context.Context, epoch uint64, itemID string, stock int) (adj *cart.Adjustment, applied bool, err error) {
	type result struct {
		adj     *cart.Adjustment
		applied bool
	}
	r, err := run(ctx, s, func(st *state) (result, bool, error) {
		if st.epoch != epoch {
			return result{}, false, nil
		}
		a, changed := st.cart.ApplyStock(itemID, stock)
		return result{adj: a, applied: true}, changed, nil
	})
	if err != nil {
		return nil, false, err
	}
	return r.adj, r.applied, nil
}

func mapDomainErr(err error) error {
	switch {
	case errs.Is(err, cart.ErrItemNotFound):
		return errs.Mark(err, errs.ErrCartItemNotFound)
	case errs.Is(err, cart.ErrExceedsCeiling):
		return errs.Mark(err, errs.ErrInsufficientStock)
	case errs.Is(err, cart.ErrInvalidQuantity):
		return errs.Mark(err, errs.ErrInvalidQuantity)
	default:
		return err
	}
}
