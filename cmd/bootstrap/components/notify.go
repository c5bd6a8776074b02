package components

import (
	"context"
	"log/slog"

	"storefront-gateway/internal/infra/notify"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/shared"

	"go.uber.org/fx"
)

var NotifyModule = fx.Module("notify",
	fx.Provide(
		NewFeed,
		fx.Annotate(
			func(f *notify.Feed) *notify.Feed { return f },
			fx.As(new(shared.NotificationFeed)),
		),
		NewNotifier,
	),
)

func NewFeed(cfg config.Config) *notify.Feed {
	return notify.NewFeed(cfg.Notify.FeedSize, cfg.Notify.FeedTTL)
}

// NewNotifier always delivers to the in-process feed and, when enabled, mirrors
// notifications onto Kafka.
func NewNotifier(lc fx.Lifecycle, cfg config.Config, feed *notify.Feed, logger *slog.Logger) shared.Notifier {
	if !cfg.Notify.KafkaEnabled {
		return feed
	}

	publisher := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.Notify), logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	logger.Info("mirroring notifications to kafka",
		slog.Any("brokers", cfg.Notify.KafkaBrokers),
		slog.String("topic", cfg.Notify.KafkaTopic),
	)
	return notify.NewFanout(logger, feed, publisher)
}
