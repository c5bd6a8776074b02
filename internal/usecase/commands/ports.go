package commands

import (
	"storefront-gateway/internal/domain/cart"

	"github.com/shopspring/decimal"
)

// SessionRef identifies whose cart a command acts on. Token is forwarded to the
// backend as-is and may be empty.
type SessionRef struct {
	UserID string
	Token  string
}

// AddItemInput is a line the UI wants in the cart. Stock is the ceiling the UI
// already knows, if any; products without one are looked up first.
type AddItemInput struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Type      cart.ItemType
	Stock     *int
}
