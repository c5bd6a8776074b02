package response

import (
	"storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/usecase/queries"
	"storefront-gateway/internal/usecase/reconcile"

	"github.com/shopspring/decimal"
)

type CartItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"maxQuantity"`
	CanIncrease bool            `json:"canIncrease"`
}

func FromCartItem(it *cart.Item) *CartItemResponse {
	return &CartItemResponse{
		ID:          it.ID,
		ProductID:   it.ProductID,
		Name:        it.Name,
		Type:        it.Type.String(),
		Price:       it.Price,
		Quantity:    it.Quantity,
		MaxQuantity: it.MaxQuantity(),
		CanIncrease: it.CanIncrease(),
	}
}

type ValidationAdjustment struct {
	ItemID           string `json:"itemId"`
	ProductID        string `json:"productId"`
	Name             string `json:"name"`
	PreviousQuantity int    `json:"previousQuantity"`
	Quantity         int    `json:"quantity"`
	OutOfStock       bool   `json:"outOfStock"`
	Message          string `json:"message"`
}

type ValidationReportResponse struct {
	Checked   int                    `json:"checked"`
	Adjusted  []ValidationAdjustment `json:"adjusted"`
	Failed    int                    `json:"failed"`
	Discarded int                    `json:"discarded"`
}

func FromReport(r *reconcile.Report) *ValidationReportResponse {
	out := &ValidationReportResponse{
		Checked:   r.Checked,
		Adjusted:  make([]ValidationAdjustment, 0, len(r.Adjusted)),
		Failed:    r.Failed,
		Discarded: r.Discarded,
	}
	for _, adj := range r.Adjusted {
		out.Adjusted = append(out.Adjusted, ValidationAdjustment{
			ItemID:           adj.ItemID,
			ProductID:        adj.ProductID,
			Name:             adj.Name,
			PreviousQuantity: adj.PreviousQuantity,
			Quantity:         adj.Quantity,
			OutOfStock:       adj.OutOfStock(),
			Message:          reconcile.AdjustmentMessage(adj),
		})
	}
	return out
}

// CartResponse and LimitsResponse expose the read models unchanged.
type (
	CartResponse   = queries.CartView
	LimitsResponse = queries.LimitsView
)
