// Package metrics holds the Prometheus collectors of the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

type Metrics struct {
	// StockChecks counts per-line stock validations by result: unchanged, adjusted, failed, discarded.
	StockChecks *prometheus.CounterVec
	// ReconcilePasses counts aggregate passes by trigger: timer, manual.
	ReconcilePasses *prometheus.CounterVec
	// Confirmations counts payment confirmation outcomes by path and phase.
	Confirmations *prometheus.CounterVec
	// ConfirmationAttempts observes how many status queries a success-path confirmation needed.
	ConfirmationAttempts prometheus.Histogram
	// BackendRequests counts outbound backend calls by endpoint and error kind ("ok" on success).
	BackendRequests *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StockChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cart", Name: "stock_checks_total",
			Help: "Per-line stock validations by result.",
		}, []string{"result"}),
		ReconcilePasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cart", Name: "reconcile_passes_total",
			Help: "Aggregate stock reconciliation passes by trigger.",
		}, []string{"trigger"}),
		Confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payment", Name: "confirmations_total",
			Help: "Payment confirmation outcomes by path and phase.",
		}, []string{"path", "phase"}),
		ConfirmationAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "payment", Name: "confirmation_attempts",
			Help:    "Status queries issued per success-path confirmation.",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		}),
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend", Name: "requests_total",
			Help: "Outbound backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Inbound HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.StockChecks,
		m.ReconcilePasses,
		m.Confirmations,
		m.ConfirmationAttempts,
		m.BackendRequests,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewNop returns collectors registered nowhere, for tests that do not inspect metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
