package cart

import (
	"errors"
	"strings"

	"storefront-gateway/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItemType  = errors.New("invalid item type")
	ErrInvalidQuantity  = errors.New("quantity must not be negative")
	ErrMissingProductID = errors.New("product or tour id is required")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrExceedsCeiling   = errors.New("quantity exceeds stock ceiling")
)

type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeTour    ItemType = "tour"
)

// TourQuantityCap is the soft cap for tour lines; tours are not stock-bounded.
const TourQuantityCap = 99

func (t ItemType) String() string {
	return string(t)
}

func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeProduct, ItemTypeTour:
		return true
	default:
		return false
	}
}

func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidItemType
	}
	return t, nil
}

// Item is one product or tour line of a cart. Stock is the last known ceiling for
// product lines; nil means it has never been fetched.
type Item struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Type      ItemType        `json:"type"`
	Stock     *int            `json:"stock,omitempty"`
}

func NewItem(productID, name string, price decimal.Decimal, quantity int, itemType ItemType, stock *int) (Item, error) {
	if strings.TrimSpace(productID) == "" {
		return Item{}, ErrMissingProductID
	}
	if !itemType.IsValid() {
		return Item{}, ErrInvalidItemType
	}
	if quantity < 0 {
		return Item{}, ErrInvalidQuantity
	}
	if price.IsNegative() {
		return Item{}, ErrNegativePrice
	}

	item := Item{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		Type:      itemType,
		Stock:     ptr.Clone(stock),
	}
	if item.IsTour() && item.Quantity > TourQuantityCap {
		item.Quantity = TourQuantityCap
	}
	if item.Quantity > item.MaxQuantity() {
		return Item{}, ErrExceedsCeiling
	}
	return item, nil
}

func (i Item) IsTour() bool {
	return i.Type == ItemTypeTour
}

// MaxQuantity is the cached ceiling: 99 for tours, last known stock for products,
// 0 for a product whose stock has never been fetched.
func (i Item) MaxQuantity() int {
	if i.IsTour() {
		return TourQuantityCap
	}
	return max(ptr.Value(i.Stock, 0), 0)
}

// CanIncrease reports whether one more unit fits under the cached ceiling.
// Tours always can; the cap is applied when the quantity is written.
func (i Item) CanIncrease() bool {
	if i.IsTour() {
		return true
	}
	return i.Quantity < i.MaxQuantity()
}

// Clone returns a copy that shares no pointers with i.
func (i Item) Clone() Item {
	i.Stock = ptr.Clone(i.Stock)
	return i
}
