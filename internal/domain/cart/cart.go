package cart

import (
	"errors"
	"time"

	"storefront-gateway/internal/pkg/ptr"

	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("cart item not found")

// Cart is the persisted collection of lines for one session.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Adjustment records a quantity clamped down to server stock.
type Adjustment struct {
	ItemID           string
	ProductID        string
	Name             string
	PreviousQuantity int
	Quantity         int
	Stock            int
}

func (a Adjustment) OutOfStock() bool {
	return a.Quantity == 0
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Clone() Cart {
	out := Cart{UpdatedAt: c.UpdatedAt}
	if c.Items != nil {
		out.Items = make([]Item, len(c.Items))
		for i, it := range c.Items {
			out.Items[i] = it.Clone()
		}
	}
	return out
}

func (c Cart) Find(id string) (Item, bool) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.Items[idx].Clone(), true
	}
	return Item{}, false
}

// ProductLines returns the lines whose quantity is bounded by stock.
func (c Cart) ProductLines() []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Type == ItemTypeProduct {
			out = append(out, it.Clone())
		}
	}
	return out
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Add merges item into an existing line of the same product and type, or appends it.
// A fresher stock ceiling carried by item replaces the cached one.
func (c *Cart) Add(item Item) (Item, error) {
	idx := c.indexOfLine(item.ProductID, item.Type)
	if idx < 0 {
		if item.IsTour() && item.Quantity > TourQuantityCap {
			item.Quantity = TourQuantityCap
		}
		if item.Quantity > item.MaxQuantity() {
			return Item{}, ErrExceedsCeiling
		}
		c.Items = append(c.Items, item.Clone())
		return item.Clone(), nil
	}

	line := c.Items[idx].Clone()
	if item.Stock != nil {
		line.Stock = ptr.Clone(item.Stock)
	}
	if !item.Price.IsZero() {
		line.Price = item.Price
	}
	line.Quantity += item.Quantity
	if line.IsTour() && line.Quantity > TourQuantityCap {
		line.Quantity = TourQuantityCap
	}
	if line.Quantity > line.MaxQuantity() {
		return Item{}, ErrExceedsCeiling
	}
	c.Items[idx] = line
	return line.Clone(), nil
}

// SetQuantity writes a user-chosen quantity. Zero removes the line.
func (c *Cart) SetQuantity(id string, quantity int) (Item, error) {
	if quantity < 0 {
		return Item{}, ErrInvalidQuantity
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}
	if quantity == 0 {
		removed := c.Items[idx].Clone()
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		removed.Quantity = 0
		return removed, nil
	}

	line := c.Items[idx]
	if line.IsTour() && quantity > TourQuantityCap {
		quantity = TourQuantityCap
	}
	if quantity > line.MaxQuantity() {
		return Item{}, ErrExceedsCeiling
	}
	line.Quantity = quantity
	c.Items[idx] = line
	return line.Clone(), nil
}

func (c *Cart) Remove(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// ApplyStock records fresh server stock for a product line and clamps its quantity.
// changed reports whether any field was written; adj is non-nil only when the
// quantity had to be reduced. Tour lines and unknown ids are left untouched.
func (c *Cart) ApplyStock(id string, stock int) (adj *Adjustment, changed bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	line := c.Items[idx]
	if line.IsTour() {
		return nil, false
	}
	if stock < 0 {
		stock = 0
	}

	if line.Stock == nil || *line.Stock != stock {
		line.Stock = &stock
		changed = true
	}
	if line.Quantity > stock {
		adj = &Adjustment{
			ItemID:           line.ID,
			ProductID:        line.ProductID,
			Name:             line.Name,
			PreviousQuantity: line.Quantity,
			Quantity:         stock,
			Stock:            stock,
		}
		line.Quantity = stock
		changed = true
	}
	c.Items[idx] = line
	return adj, changed
}

func (c Cart) indexOf(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) indexOfLine(productID string, t ItemType) int {
	for i, it := range c.Items {
		if it.ProductID == productID && it.Type == t {
			return i
		}
	}
	return -1
}
