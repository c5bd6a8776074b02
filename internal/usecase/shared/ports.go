package shared

import (
	"context"
	"time"

	"storefront-gateway/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockSnapshot is the server-side availability of one product at query time.
type StockSnapshot struct {
	ProductID       string
	Name            string
	QuantityInStock int
}

// StockReader looks up authoritative stock. token may be empty.
type StockReader interface {
	GetStock(ctx context.Context, productID, token string) (*StockSnapshot, error)
}

// CallbackResult is the confirmation-callback payload; Status is the numeric code.
type CallbackResult struct {
	Status      int
	OrderID     string
	OrderCode   string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Message     string
}

// OrderRecord is an order/payment status as reported by the backend lookups.
type OrderRecord struct {
	OrderID     string
	OrderCode   string
	Status      string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Message     string
}

type PaymentGateway interface {
	ConfirmCallback(ctx context.Context, orderID, token string, idempotencyKey uuid.UUID) (*CallbackResult, error)
	GetOrderStatus(ctx context.Context, orderID, token string) (*OrderRecord, error)
	GetOrderByCode(ctx context.Context, orderCode, token string) (*OrderRecord, error)
}

// CartSnapshotStore persists a cart under its storage key. Load returns an empty
// cart, not an error, when nothing is stored.
type CartSnapshotStore interface {
	Load(ctx context.Context, key string) (cart.Cart, error)
	Save(ctx context.Context, key string, c cart.Cart) error
	Delete(ctx context.Context, key string) error
}

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	SessionID string            `json:"sessionId"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Duration  time.Duration     `json:"duration"`
	CreatedAt time.Time         `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationFeed is the pull side used by the UI.
type NotificationFeed interface {
	Drain(sessionID string) []Notification
}
