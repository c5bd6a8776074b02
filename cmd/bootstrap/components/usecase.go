package components

import (
	"context"
	"log/slog"

	"storefront-gateway/internal/pkg/clock"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/cartstate"
	"storefront-gateway/internal/usecase/commands"
	"storefront-gateway/internal/usecase/queries"
	"storefront-gateway/internal/usecase/reconcile"
	"storefront-gateway/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	fx.Invoke(registerShutdown),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config, persist shared.CartSnapshotStore, clk clock.Clock, logger *slog.Logger) *cartstate.Registry {
		return cartstate.NewRegistry(cfg.Cart, persist, clk, logger)
	},
	reconcile.NewReconciler,
	func(r *reconcile.Reconciler, registry *cartstate.Registry, cfg config.Config, logger *slog.Logger) *reconcile.Watcher {
		w := reconcile.NewWatcher(r, cfg.Cart, logger)
		// idle carts stop polling the backend before their store closes
		registry.OnRelease(w.Unwatch)
		return w
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartUseCase,
		commands.NewPaymentUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
		queries.NewNotificationQueries,
	),
)

// registerShutdown stops background stock checks before the cart stores they write to.
func registerShutdown(lc fx.Lifecycle, watcher *reconcile.Watcher, registry *cartstate.Registry) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			watcher.Stop()
			registry.CloseAll()
			return nil
		},
	})
}
