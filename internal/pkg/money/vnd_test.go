//go:build unit

package money_test

import (
	"testing"

	"storefront-gateway/internal/pkg/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{name: "zero", amount: decimal.Zero, want: "0 ₫"},
		{name: "below one thousand", amount: decimal.NewFromInt(999), want: "999 ₫"},
		{name: "exact thousand", amount: decimal.NewFromInt(1000), want: "1.000 ₫"},
		{name: "order total", amount: decimal.NewFromInt(500000), want: "500.000 ₫"},
		{name: "millions", amount: decimal.NewFromInt(12345678), want: "12.345.678 ₫"},
		{name: "fraction rounds to whole dong", amount: decimal.RequireFromString("1499.5"), want: "1.500 ₫"},
		{name: "negative refund", amount: decimal.NewFromInt(-250000), want: "-250.000 ₫"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FormatVND(tt.amount))
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := money.LineTotal(decimal.NewFromInt(150000), 3)
	assert.True(t, decimal.NewFromInt(450000).Equal(got), "got %s", got)
}
