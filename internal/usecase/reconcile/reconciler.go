// Package reconcile re-validates cached cart quantities against server stock.
// It only reads from the backend and only writes to the local cart store.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/pkg/clock"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/pkg/metrics"
	"storefront-gateway/internal/usecase/cartstate"
	"storefront-gateway/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	TriggerTimer  = "timer"
	TriggerManual = "manual"
)

const (
	resultUnchanged = "unchanged"
	resultAdjusted  = "adjusted"
	resultFailed    = "failed"
	resultDiscarded = "discarded"
)

// Session is the cart a pass runs against plus the caller's bearer token (may be empty).
type Session struct {
	ID    string
	Token string
	Store *cartstate.Store
}

// Report summarises one aggregate pass.
type Report struct {
	Checked   int               `json:"checked"`
	Adjusted  []cart.Adjustment `json:"adjusted"`
	Failed    int               `json:"failed"`
	Discarded int               `json:"discarded"`
}

type Reconciler struct {
	stock         shared.StockReader
	notifier      shared.Notifier
	clock         clock.Clock
	metrics       *metrics.Metrics
	logger        *slog.Logger
	notifyCfg     config.NotifyConfig
	maxConcurrent int
	lookupTimeout time.Duration

	lookups singleflight.Group
}

func NewReconciler(
	stock shared.StockReader,
	notifier shared.Notifier,
	clk clock.Clock,
	m *metrics.Metrics,
	cfg config.Config,
	logger *slog.Logger,
) *Reconciler {
	maxConcurrent := cfg.Cart.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Reconciler{
		stock:         stock,
		notifier:      notifier,
		clock:         clk,
		metrics:       m,
		logger:        logger,
		notifyCfg:     cfg.Notify,
		maxConcurrent: maxConcurrent,
		lookupTimeout: cfg.Backend.Timeout,
	}
}

// ValidateItem refreshes the stock ceiling of one line. Tour lines are never queried.
// A failed lookup is logged and reported as no change.
func (r *Reconciler) ValidateItem(ctx context.Context, sess Session, itemID string) (*cart.Adjustment, error) {
	snap, err := sess.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	line, ok := snap.Cart.Find(itemID)
	if !ok {
		return nil, errs.ErrCartItemNotFound
	}
	if line.IsTour() {
		return nil, nil
	}

	adj, _, err := r.validateLine(ctx, sess, line, snap.Epoch)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	return adj, nil
}

// ValidateAll checks every product line concurrently and returns once all lookups
// have settled. Individual failures never stop sibling lines.
func (r *Reconciler) ValidateAll(ctx context.Context, sess Session, trigger string) (Report, error) {
	snap, err := sess.Store.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	r.metrics.ReconcilePasses.WithLabelValues(trigger).Inc()

	lines := snap.Cart.ProductLines()
	report := Report{Checked: len(lines)}
	if len(lines) == 0 {
		return report, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.maxConcurrent)

	for _, line := range lines {
		g.Go(func() error {
			adj, applied, err := r.validateLine(ctx, sess, line, snap.Epoch)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
			case !applied:
				report.Discarded++
			case adj != nil:
				report.Adjusted = append(report.Adjusted, *adj)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	r.logger.Debug("stock reconciliation pass finished",
		slog.String("cart_key", sess.Store.Key()),
		slog.String("trigger", trigger),
		slog.Int("checked", report.Checked),
		slog.Int("adjusted", len(report.Adjusted)),
		slog.Int("failed", report.Failed))
	return report, nil
}

func (r *Reconciler) validateLine(ctx context.Context, sess Session, line cart.Item, epoch uint64) (*cart.Adjustment, bool, error) {
	logger := r.logger.With(slog.String("cart_key", sess.Store.Key()), slog.String("product_id", line.ProductID))

	stock, err := r.fetchStock(ctx, line.ProductID, sess.Token)
	if err != nil {
		r.metrics.StockChecks.WithLabelValues(resultFailed).Inc()
		logger.Warn("stock lookup failed, leaving line unchanged", slog.String("error", err.Error()))
		return nil, false, err
	}

	adj, applied, err := sess.Store.ApplyStock(ctx, epoch, line.ID, stock)
	if err != nil {
		r.metrics.StockChecks.WithLabelValues(resultFailed).Inc()
		logger.Warn("failed to apply stock to cart", slog.String("error", err.Error()))
		return nil, false, err
	}
	if !applied {
		r.metrics.StockChecks.WithLabelValues(resultDiscarded).Inc()
		return nil, false, nil
	}
	if adj == nil {
		r.metrics.StockChecks.WithLabelValues(resultUnchanged).Inc()
		return nil, true, nil
	}

	r.metrics.StockChecks.WithLabelValues(resultAdjusted).Inc()
	logger.Info("cart quantity clamped to stock",
		slog.Int("previous_quantity", adj.PreviousQuantity),
		slog.Int("quantity", adj.Quantity))
	r.notifyAdjustment(ctx, sess.ID, *adj)
	return adj, true, nil
}

// fetchStock collapses concurrent lookups of the same product into one backend call.
// The shared call is detached from any one caller, so a session torn down mid-lookup
// only abandons its own wait.
func (r *Reconciler) fetchStock(ctx context.Context, productID, token string) (int, error) {
	ch := r.lookups.DoChan(productID, func() (any, error) {
		lookupCtx := context.WithoutCancel(ctx)
		if r.lookupTimeout > 0 {
			var cancel context.CancelFunc
			lookupCtx, cancel = context.WithTimeout(lookupCtx, r.lookupTimeout)
			defer cancel()
		}
		snap, err := r.stock.GetStock(lookupCtx, productID, token)
		if err != nil {
			return nil, err
		}
		return snap.QuantityInStock, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *Reconciler) notifyAdjustment(ctx context.Context, sessionID string, adj cart.Adjustment) {
	n := shared.Notification{
		ID:        uuid.New(),
		SessionID: sessionID,
		Level:     shared.LevelWarning,
		Message:   AdjustmentMessage(adj),
		Duration:  r.notifyCfg.WarningDuration,
		CreatedAt: r.clock.Now(),
	}
	if adj.OutOfStock() {
		n.Level = shared.LevelError
	}
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.logger.Warn("failed to deliver stock notification",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

// AdjustmentMessage is the user-facing text for a clamped line.
func AdjustmentMessage(adj cart.Adjustment) string {
	if adj.OutOfStock() {
		return fmt.Sprintf("Sản phẩm \"%s\" đã hết hàng và đã được đặt về 0 trong giỏ hàng.", adj.Name)
	}
	return fmt.Sprintf("Số lượng sản phẩm \"%s\" đã được điều chỉnh xuống %d do thay đổi tồn kho.", adj.Name, adj.Quantity)
}

// CanIncreaseQuantity consults the cached ceiling only. An absent line (or one of a
// different type) cannot be increased; tour lines always can.
func (r *Reconciler) CanIncreaseQuantity(ctx context.Context, store *cartstate.Store, itemID string, t cart.ItemType) (bool, error) {
	line, ok, err := findLine(ctx, store, itemID, t)
	if err != nil || !ok {
		return false, err
	}
	return line.CanIncrease(), nil
}

// GetMaxQuantity returns the cached ceiling: 99 for a present tour line, the last
// known stock for a product line, 0 when the line is absent.
func (r *Reconciler) GetMaxQuantity(ctx context.Context, store *cartstate.Store, itemID string, t cart.ItemType) (int, error) {
	line, ok, err := findLine(ctx, store, itemID, t)
	if err != nil || !ok {
		return 0, err
	}
	return line.MaxQuantity(), nil
}

func findLine(ctx context.Context, store *cartstate.Store, itemID string, t cart.ItemType) (cart.Item, bool, error) {
	snap, err := store.Snapshot(ctx)
	if err != nil {
		return cart.Item{}, false, err
	}
	line, ok := snap.Cart.Find(itemID)
	if !ok || line.Type != t {
		return cart.Item{}, false, nil
	}
	return line, true, nil
}
