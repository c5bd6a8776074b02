package notify

import (
	"context"
	"log/slog"

	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/usecase/shared"
)

// Fanout delivers to every target. A failing target does not stop the others;
// the first failure is returned.
type Fanout struct {
	targets []shared.Notifier
	logger  *slog.Logger
}

func NewFanout(logger *slog.Logger, targets ...shared.Notifier) *Fanout {
	return &Fanout{targets: targets, logger: logger}
}

func (f *Fanout) Notify(ctx context.Context, n shared.Notification) error {
	var first error
	for i, t := range f.targets {
		if err := t.Notify(ctx, n); err != nil {
			f.logger.Warn("notification target failed",
				slog.Int("target", i),
				slog.String("session_id", n.SessionID),
				slog.String("error", err.Error()))
			if first == nil {
				first = errs.Wrap(err, "notify")
			}
		}
	}
	return first
}
