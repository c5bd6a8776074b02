package queries

import (
	"context"
	"time"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/pkg/money"
	"storefront-gateway/internal/usecase/cartstate"
	"storefront-gateway/internal/usecase/reconcile"

	"github.com/shopspring/decimal"
)

type CartQueries interface {
	// GetCart returns the session's cart and resumes its stock watcher when it has lines.
	GetCart(ctx context.Context, userID, token string) (*CartView, error)
	GetLimits(ctx context.Context, userID, itemID string, itemType cart.ItemType) (*LimitsView, error)
}

type cartQueriesImpl struct {
	registry   *cartstate.Registry
	reconciler *reconcile.Reconciler
	watcher    *reconcile.Watcher
}

func NewCartQueries(registry *cartstate.Registry, reconciler *reconcile.Reconciler, watcher *reconcile.Watcher) CartQueries {
	return &cartQueriesImpl{
		registry:   registry,
		reconciler: reconciler,
		watcher:    watcher,
	}
}

func (q *cartQueriesImpl) GetCart(ctx context.Context, userID, token string) (*CartView, error) {
	store, err := q.registry.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Cart.IsEmpty() {
		q.watcher.Watch(reconcile.Session{ID: userID, Token: token, Store: store})
	}
	return newCartView(snap.Cart), nil
}

func (q *cartQueriesImpl) GetLimits(ctx context.Context, userID, itemID string, itemType cart.ItemType) (*LimitsView, error) {
	store, err := q.registry.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	can, err := q.reconciler.CanIncreaseQuantity(ctx, store, itemID, itemType)
	if err != nil {
		return nil, err
	}
	maxQty, err := q.reconciler.GetMaxQuantity(ctx, store, itemID, itemType)
	if err != nil {
		return nil, err
	}
	return &LimitsView{ItemID: itemID, Type: itemType, CanIncrease: can, MaxQuantity: maxQty}, nil
}

func newCartView(c cart.Cart) *CartView {
	view := &CartView{
		Items:         make([]CartLineView, 0, len(c.Items)),
		TotalQuantity: c.TotalQuantity(),
		Total:         c.Total(),
		UpdatedAt:     c.UpdatedAt,
	}
	view.FormattedTotal = money.FormatVND(view.Total)
	for _, it := range c.Items {
		lineTotal := money.LineTotal(it.Price, it.Quantity)
		view.Items = append(view.Items, CartLineView{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Name:           it.Name,
			Type:           it.Type,
			Price:          it.Price,
			Quantity:       it.Quantity,
			MaxQuantity:    it.MaxQuantity(),
			CanIncrease:    it.CanIncrease(),
			LineTotal:      lineTotal,
			FormattedTotal: money.FormatVND(lineTotal),
		})
	}
	return view
}

// CartView is the read model of a session's cart
type CartView struct {
	Items          []CartLineView  `json:"items"`
	TotalQuantity  int             `json:"totalQuantity"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formattedTotal"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type CartLineView struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Type           cart.ItemType   `json:"type"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	MaxQuantity    int             `json:"maxQuantity"`
	CanIncrease    bool            `json:"canIncrease"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	FormattedTotal string          `json:"formattedTotal"`
}

// LimitsView answers the increment-button gate from the cached ceiling
type LimitsView struct {
	ItemID      string        `json:"itemId"`
	Type        cart.ItemType `json:"type"`
	CanIncrease bool          `json:"canIncrease"`
	MaxQuantity int           `json:"maxQuantity"`
}
