//go:build unit

package metrics_test

import (
	"strings"
	"testing"

	"storefront-gateway/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.StockChecks.WithLabelValues("adjusted").Inc()
	m.StockChecks.WithLabelValues("adjusted").Inc()
	m.Confirmations.WithLabelValues("success", "resolved").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.StockChecks.WithLabelValues("adjusted")), 0)

	expected := `
# HELP storefront_payment_confirmations_total Payment confirmation outcomes by path and phase.
# TYPE storefront_payment_confirmations_total counter
storefront_payment_confirmations_total{path="success",phase="resolved"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storefront_payment_confirmations_total"))
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
