package bootstrap

import (
	"storefront-gateway/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		func() *metrics.Metrics {
			return metrics.New(prometheus.DefaultRegisterer)
		},
		func() prometheus.Gatherer {
			return prometheus.DefaultGatherer
		},
	),
)
