package bootstrap

import (
	"storefront-gateway/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	JWTModule,
	MetricsModule,
	components.PersistenceModule,
	components.BackendModule,
	components.NotifyModule,
	components.UseCaseModule,
	components.HandlerModule,
)
