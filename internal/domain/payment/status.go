package payment

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Numeric codes returned by the confirmation callback.
const (
	CallbackCodePending   = 0
	CallbackCodeSuccess   = 1
	CallbackCodeCancelled = 2
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Label is the text shown on the confirmation page.
func (s Status) Label() string {
	switch s {
	case StatusSuccess:
		return "Thành công"
	case StatusFailed:
		return "Thất bại"
	case StatusCancelled:
		return "Đã hủy"
	default:
		return "Đang xử lý"
	}
}

// StatusFromCallbackCode maps the callback's numeric status. Negative and unknown
// codes are treated as failures.
func StatusFromCallbackCode(code int) Status {
	switch code {
	case CallbackCodeSuccess:
		return StatusSuccess
	case CallbackCodePending:
		return StatusPending
	case CallbackCodeCancelled:
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// ParseStatus accepts the spellings used by the order and gateway endpoints
// (e.g. "PAID", "Success", "CANCELED").
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "paid", "completed", "confirmed":
		return StatusSuccess
	case "cancelled", "canceled", "cancel":
		return StatusCancelled
	case "failed", "failure", "expired", "error":
		return StatusFailed
	case "pending", "processing", "unpaid", "":
		return StatusPending
	default:
		return StatusPending
	}
}
