package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const vndSymbol = "₫"

// FormatVND renders an amount the way vi-VN currency formatting does: whole dong,
// "." as the thousands separator and a trailing symbol, e.g. "500.000 ₫".
func FormatVND(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" ")
	b.WriteString(vndSymbol)
	return b.String()
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
