//go:build unit || e2e

package builder

import (
	"storefront-gateway/internal/domain/cart"
	reqdto "storefront-gateway/internal/handler/dto/request"
	"storefront-gateway/internal/pkg/ptr"
	"storefront-gateway/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type CartItemBuilder struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Type      cart.ItemType
	Stock     *int
}

func NewCartItemBuilder() *CartItemBuilder {
	return &CartItemBuilder{
		ProductID: "prod-001",
		Name:      "Nón lá Huế",
		Price:     decimal.NewFromInt(150000),
		Quantity:  2,
		Type:      cart.ItemTypeProduct,
		Stock:     ptr.Of(10),
	}
}

func NewTourItemBuilder() *CartItemBuilder {
	return &CartItemBuilder{
		ProductID: "tour-halong-2d1n",
		Name:      "Hạ Long 2N1Đ",
		Price:     decimal.NewFromInt(2500000),
		Quantity:  1,
		Type:      cart.ItemTypeTour,
	}
}

func (b *CartItemBuilder) With(mutate func(*CartItemBuilder)) *CartItemBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *CartItemBuilder) BuildDomain() (cart.Item, error) {
	return cart.NewItem(b.ProductID, b.Name, b.Price, b.Quantity, b.Type, b.Stock)
}

func (b *CartItemBuilder) BuildDTO() reqdto.AddCartItemRequest {
	return reqdto.AddCartItemRequest{
		ProductID: b.ProductID,
		Name:      b.Name,
		Price:     b.Price,
		Quantity:  b.Quantity,
		Type:      b.Type.String(),
		Stock:     b.Stock,
	}
}

func (b *CartItemBuilder) BuildInput() commands.AddItemInput {
	return commands.AddItemInput{
		ProductID: b.ProductID,
		Name:      b.Name,
		Price:     b.Price,
		Quantity:  b.Quantity,
		Type:      b.Type,
		Stock:     b.Stock,
	}
}
