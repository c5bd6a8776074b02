package request

import "strings"

// PaymentReturnQuery carries the parameters the payment gateway appends to its redirect.
type PaymentReturnQuery struct {
	OrderID   string `form:"orderId"`
	OrderCode string `form:"orderCode"`
}

func (q PaymentReturnQuery) Normalized() PaymentReturnQuery {
	return PaymentReturnQuery{
		OrderID:   strings.TrimSpace(q.OrderID),
		OrderCode: strings.TrimSpace(q.OrderCode),
	}
}
