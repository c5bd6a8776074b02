package components

import (
	"storefront-gateway/internal/handler"
	"storefront-gateway/internal/handler/api"
	"storefront-gateway/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
		api.NewPaymentHandler,
		api.NewNotificationHandler,
		middleware.NewAuthMiddleware,
		func(cart *api.CartHandler, payment *api.PaymentHandler, notification *api.NotificationHandler) handler.Handlers {
			return handler.Handlers{Cart: cart, Payment: payment, Notification: notification}
		},
	),
	fx.Invoke(handler.NewRouter),
)
