package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-gateway/internal/pkg/config"
)

// Watcher runs a periodic reconciliation pass per session while its cart is non-empty.
type Watcher struct {
	reconciler *Reconciler
	interval   time.Duration
	enabled    bool
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*watch
	wg       sync.WaitGroup
}

type watch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(reconciler *Reconciler, cfg config.CartConfig, logger *slog.Logger) *Watcher {
	return &Watcher{
		reconciler: reconciler,
		interval:   cfg.UpdateInterval,
		enabled:    cfg.AutoUpdate && cfg.UpdateInterval > 0,
		logger:     logger,
		sessions:   make(map[string]*watch),
	}
}

// Watch starts the timer for sess unless auto update is off or it is already running.
func (w *Watcher) Watch(sess Session) {
	if !w.enabled {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sessions[sess.ID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wt := &watch{cancel: cancel, done: make(chan struct{})}
	w.sessions[sess.ID] = wt

	w.wg.Add(1)
	go w.run(ctx, sess, wt)
}

func (w *Watcher) Watching(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sessions[sessionID]
	return ok
}

// Unwatch cancels the session's timer and waits for an in-flight pass to finish.
// Results of lookups still running are discarded.
func (w *Watcher) Unwatch(sessionID string) {
	w.mu.Lock()
	wt, ok := w.sessions[sessionID]
	delete(w.sessions, sessionID)
	w.mu.Unlock()

	if ok {
		wt.cancel()
		<-wt.done
	}
}

// Stop cancels every session and waits for all of them.
func (w *Watcher) Stop() {
	w.mu.Lock()
	all := w.sessions
	w.sessions = make(map[string]*watch)
	w.mu.Unlock()

	for _, wt := range all {
		wt.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, sess Session, wt *watch) {
	defer w.wg.Done()
	defer close(wt.done)
	defer w.forget(sess.ID, wt)

	logger := w.logger.With(slog.String("cart_key", sess.Store.Key()))
	logger.Debug("stock watcher started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, err := sess.Store.Snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("stock watcher stopped", slog.String("error", err.Error()))
			}
			return
		}
		if snap.Cart.IsEmpty() {
			logger.Debug("cart is empty, stock watcher stopped")
			return
		}

		if _, err := w.reconciler.ValidateAll(ctx, sess, TriggerTimer); err != nil && ctx.Err() == nil {
			logger.Warn("stock reconciliation pass failed", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) forget(sessionID string, wt *watch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sessions[sessionID] == wt {
		delete(w.sessions, sessionID)
	}
}
