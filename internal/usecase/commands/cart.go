package commands

import (
	"context"
	"fmt"
	"log/slog"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/pkg/apierr"
	"storefront-gateway/internal/pkg/clock"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/pkg/ptr"
	"storefront-gateway/internal/usecase/cartstate"
	"storefront-gateway/internal/usecase/reconcile"
	"storefront-gateway/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errs.New("product not found")
	ErrInvalidCartItem = errs.New("invalid cart item")
)

type CartCommands interface {
	AddItem(ctx context.Context, sess SessionRef, in AddItemInput) (*cart.Item, error)
	UpdateQuantity(ctx context.Context, sess SessionRef, itemID string, quantity int) (*cart.Item, error)
	RemoveItem(ctx context.Context, sess SessionRef, itemID string) error
	// ClearCart empties the cart after checkout completion.
	ClearCart(ctx context.Context, sess SessionRef) error
	ValidateCart(ctx context.Context, sess SessionRef) (*reconcile.Report, error)
	// EndSession drops the cart on logout and stops its stock watcher.
	EndSession(ctx context.Context, sess SessionRef) error
}

type cartUseCaseImpl struct {
	registry   *cartstate.Registry
	reconciler *reconcile.Reconciler
	watcher    *reconcile.Watcher
	stock      shared.StockReader
	notifier   shared.Notifier
	clock      clock.Clock
	notifyCfg  config.NotifyConfig
	logger     *slog.Logger
}

func NewCartUseCase(
	registry *cartstate.Registry,
	reconciler *reconcile.Reconciler,
	watcher *reconcile.Watcher,
	stock shared.StockReader,
	notifier shared.Notifier,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) CartCommands {
	return &cartUseCaseImpl{
		registry:   registry,
		reconciler: reconciler,
		watcher:    watcher,
		stock:      stock,
		notifier:   notifier,
		clock:      clk,
		notifyCfg:  cfg.Notify,
		logger:     logger,
	}
}

func (u *cartUseCaseImpl) session(ctx context.Context, ref SessionRef) (reconcile.Session, error) {
	store, err := u.registry.Get(ctx, ref.UserID)
	if err != nil {
		return reconcile.Session{}, err
	}
	return reconcile.Session{ID: ref.UserID, Token: ref.Token, Store: store}, nil
}

func (u *cartUseCaseImpl) AddItem(ctx context.Context, ref SessionRef, in AddItemInput) (*cart.Item, error) {
	sess, err := u.session(ctx, ref)
	if err != nil {
		return nil, err
	}

	if in.Type == cart.ItemTypeProduct && in.Stock == nil {
		snap, err := u.stock.GetStock(ctx, in.ProductID, ref.Token)
		if err != nil {
			return nil, u.mapStockErr(err, in.ProductID)
		}
		in.Stock = ptr.Of(snap.QuantityInStock)
		if in.Name == "" {
			in.Name = snap.Name
		}
	}

	item, err := cart.NewItem(in.ProductID, in.Name, in.Price, in.Quantity, in.Type, in.Stock)
	if err != nil {
		if errs.Is(err, cart.ErrExceedsCeiling) {
			return nil, errs.Mark(err, errs.ErrInsufficientStock)
		}
		return nil, errs.Mark(err, ErrInvalidCartItem)
	}

	line, err := sess.Store.Add(ctx, item)
	if err != nil {
		return nil, err
	}
	u.watcher.Watch(sess)
	u.notifyAdded(ctx, ref.UserID, line)
	return &line, nil
}

// UpdateQuantity writes a user-chosen quantity. When a product line rejects it
// against a cached ceiling, the ceiling is refreshed once and the write retried.
func (u *cartUseCaseImpl) UpdateQuantity(ctx context.Context, ref SessionRef, itemID string, quantity int) (*cart.Item, error) {
	sess, err := u.session(ctx, ref)
	if err != nil {
		return nil, err
	}

	line, err := sess.Store.SetQuantity(ctx, itemID, quantity)
	if errs.Is(err, errs.ErrInsufficientStock) {
		if _, verr := u.reconciler.ValidateItem(ctx, sess, itemID); verr != nil {
			return nil, verr
		}
		line, err = sess.Store.SetQuantity(ctx, itemID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (u *cartUseCaseImpl) RemoveItem(ctx context.Context, ref SessionRef, itemID string) error {
	sess, err := u.session(ctx, ref)
	if err != nil {
		return err
	}
	return sess.Store.Remove(ctx, itemID)
}

func (u *cartUseCaseImpl) ClearCart(ctx context.Context, ref SessionRef) error {
	sess, err := u.session(ctx, ref)
	if err != nil {
		return err
	}
	u.watcher.Unwatch(ref.UserID)
	return sess.Store.Clear(ctx)
}

func (u *cartUseCaseImpl) ValidateCart(ctx context.Context, ref SessionRef) (*reconcile.Report, error) {
	sess, err := u.session(ctx, ref)
	if err != nil {
		return nil, err
	}
	report, err := u.reconciler.ValidateAll(ctx, sess, reconcile.TriggerManual)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (u *cartUseCaseImpl) EndSession(ctx context.Context, ref SessionRef) error {
	u.watcher.Unwatch(ref.UserID)

	sess, err := u.session(ctx, ref)
	if err != nil {
		return err
	}
	if err := sess.Store.Clear(ctx); err != nil {
		return err
	}
	u.registry.Release(ref.UserID)
	return nil
}

func (u *cartUseCaseImpl) notifyAdded(ctx context.Context, sessionID string, line cart.Item) {
	n := shared.Notification{
		ID:        uuid.New(),
		SessionID: sessionID,
		Level:     shared.LevelSuccess,
		Message:   fmt.Sprintf("Đã thêm \"%s\" vào giỏ hàng.", line.Name),
		Duration:  u.notifyCfg.SuccessDuration,
		CreatedAt: u.clock.Now(),
	}
	if err := u.notifier.Notify(ctx, n); err != nil {
		u.logger.Warn("failed to deliver cart notification",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

func (u *cartUseCaseImpl) mapStockErr(err error, productID string) error {
	if apierr.IsKind(err, apierr.KindNotFound) {
		return errs.Mark(err, ErrProductNotFound)
	}
	u.logger.Warn("stock lookup for new cart line failed",
		slog.String("product_id", productID),
		slog.String("error", err.Error()))
	return errs.Mark(err, errs.ErrBackendOperationFailed)
}
