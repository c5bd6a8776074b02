package response

import (
	"time"

	"storefront-gateway/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	OrderID            string          `json:"orderId"`
	OrderCode          string          `json:"orderCode,omitempty"`
	Status             string          `json:"status"`
	StatusLabel        string          `json:"statusLabel"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	FormattedAmount    string          `json:"formattedAmount"`
	CreatedAt          *time.Time      `json:"createdAt,omitempty"`
	FormattedCreatedAt string          `json:"formattedCreatedAt,omitempty"`
	Message            string          `json:"message,omitempty"`
}

type PaymentOutcomeResponse struct {
	Phase   string         `json:"phase"`
	Message string         `json:"message,omitempty"`
	Order   *OrderResponse `json:"order,omitempty"`
}

// FromOutcome renders an outcome with times shown in loc.
func FromOutcome(out *payment.Outcome, loc *time.Location) *PaymentOutcomeResponse {
	resp := &PaymentOutcomeResponse{
		Phase:   string(out.Phase),
		Message: out.Message,
	}
	if o := out.Order; o != nil {
		resp.Order = &OrderResponse{
			OrderID:            o.OrderID,
			OrderCode:          o.OrderCode,
			Status:             o.Status.String(),
			StatusLabel:        o.Status.Label(),
			TotalAmount:        o.TotalAmount,
			FormattedAmount:    o.FormattedAmount(),
			FormattedCreatedAt: o.FormattedCreatedAt(loc),
			Message:            o.Message,
		}
		if !o.CreatedAt.IsZero() {
			created := o.CreatedAt
			resp.Order.CreatedAt = &created
		}
	}
	return resp
}
