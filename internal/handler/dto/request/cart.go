package request

import (
	"strings"

	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Type      string          `json:"type" binding:"required"`
	// Stock is the ceiling the UI already knows; omitted for products it never fetched.
	Stock *int `json:"stock,omitempty" binding:"omitempty,min=0"`
}

func (r AddCartItemRequest) ToInput() (commands.AddItemInput, error) {
	itemType, err := cart.ParseItemType(r.Type)
	if err != nil {
		return commands.AddItemInput{}, err
	}
	return commands.AddItemInput{
		ProductID: strings.TrimSpace(r.ProductID),
		Name:      strings.TrimSpace(r.Name),
		Price:     r.Price,
		Quantity:  r.Quantity,
		Type:      itemType,
		Stock:     r.Stock,
	}, nil
}

// UpdateCartItemRequest sets a line's quantity. Zero removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type LimitsQuery struct {
	Type string `form:"type" binding:"required"`
}
