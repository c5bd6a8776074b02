package payment

import (
	"time"

	"storefront-gateway/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// OrderInfo is the ephemeral status record rendered by a confirmation page.
// It is never persisted or cached.
type OrderInfo struct {
	OrderID     string
	OrderCode   string
	Status      Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Message     string
}

func (o OrderInfo) FormattedAmount() string {
	return money.FormatVND(o.TotalAmount)
}

// FormattedCreatedAt renders the creation time as dd/MM/yyyy HH:mm in loc.
func (o OrderInfo) FormattedCreatedAt(loc *time.Location) string {
	if o.CreatedAt.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return o.CreatedAt.In(loc).Format("02/01/2006 15:04")
}

type Phase string

const (
	PhaseResolved Phase = "resolved"
	PhaseError    Phase = "error"
	// PhaseUnknown means polling ran out before a terminal status was seen.
	PhaseUnknown Phase = "unknown"
)

// Outcome is the final state of a confirmation page. The loading phase is the
// lifetime of the request that produces it.
type Outcome struct {
	Phase   Phase
	Order   *OrderInfo
	Message string
}

const (
	MessageConfirmationFailed = "Không thể xác nhận thanh toán. Vui lòng thử lại sau hoặc liên hệ hỗ trợ."
	MessageStatusUnknown      = "Chưa xác định được trạng thái thanh toán, vui lòng kiểm tra lịch sử đơn hàng."
	MessageOrderNotFound      = "Không tìm thấy thông tin đơn hàng."
)
