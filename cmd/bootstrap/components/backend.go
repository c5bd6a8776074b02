package components

import (
	"log/slog"

	"storefront-gateway/internal/infra/backend"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/metrics"
	"storefront-gateway/internal/usecase/shared"

	"go.uber.org/fx"
)

var BackendModule = fx.Module("backend",
	fx.Provide(
		fx.Annotate(
			NewBackendClient,
			fx.As(new(shared.StockReader)),
			fx.As(new(shared.PaymentGateway)),
		),
	),
)

func NewBackendClient(cfg config.Config, m *metrics.Metrics, logger *slog.Logger) *backend.Client {
	return backend.NewClient(cfg.Backend, m, logger)
}
