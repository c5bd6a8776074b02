package bootstrap

import (
	"storefront-gateway/internal/handler/middleware"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		fx.Annotate(
			NewJWTService,
			fx.As(new(middleware.TokenValidator)),
		),
	),
)

// NewJWTService only verifies tokens; they are issued by the tourism backend.
func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret)
}
