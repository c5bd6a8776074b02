package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront-gateway/internal/domain/payment"
	"storefront-gateway/internal/pkg/apierr"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/pkg/metrics"
	"storefront-gateway/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const (
	pathSuccess = "success"
	pathCancel  = "cancel"
)

var errStillPending = errs.New("payment still pending")

// PaymentCommands confirm a payment after the gateway redirects the user back.
// Only a missing order reference is returned as an error; every other failure
// is part of the Outcome.
type PaymentCommands interface {
	ConfirmSuccess(ctx context.Context, orderID, token string) (*payment.Outcome, error)
	ConfirmCancel(ctx context.Context, orderID, orderCode, token string) (*payment.Outcome, error)
}

type paymentUseCaseImpl struct {
	gateway shared.PaymentGateway
	cfg     config.PaymentConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewPaymentUseCase(gateway shared.PaymentGateway, cfg config.Config, m *metrics.Metrics, logger *slog.Logger) PaymentCommands {
	return &paymentUseCaseImpl{
		gateway: gateway,
		cfg:     cfg.Payment,
		metrics: m,
		logger:  logger,
	}
}

// IdempotencyKey is stable per order so repeated confirmations collapse server-side.
func IdempotencyKey(orderID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("payment-confirm:"+orderID))
}

func (u *paymentUseCaseImpl) ConfirmSuccess(ctx context.Context, orderID, token string) (*payment.Outcome, error) {
	if orderID == "" {
		return nil, errs.ErrOrderReferenceRequired
	}
	logger := u.logger.With(slog.String("order_id", orderID))

	if err := u.settle(ctx); err != nil {
		return u.finish(pathSuccess, failedOutcome()), nil
	}

	key := IdempotencyKey(orderID)
	var (
		last     *shared.CallbackResult
		attempts int
	)
	operation := func() error {
		attempts++
		res, err := u.gateway.ConfirmCallback(ctx, orderID, token, key)
		if err != nil {
			kind := apierr.KindOf(err)
			logger.Warn("payment confirmation callback failed",
				slog.Int("attempt", attempts),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
			if !kind.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		last = res
		if !payment.StatusFromCallbackCode(res.Status).IsTerminal() {
			return errStillPending
		}
		return nil
	}

	err := backoff.Retry(operation, u.policy(ctx))
	u.metrics.ConfirmationAttempts.Observe(float64(attempts))

	switch {
	case err == nil:
		return u.finish(pathSuccess, payment.Outcome{Phase: payment.PhaseResolved, Order: callbackOrder(last)}), nil
	case last != nil:
		// at least one answer came back, but never a terminal one
		logger.Info("payment status still unknown after polling", slog.Int("attempts", attempts))
		return u.finish(pathSuccess, payment.Outcome{
			Phase:   payment.PhaseUnknown,
			Order:   callbackOrder(last),
			Message: payment.MessageStatusUnknown,
		}), nil
	default:
		logger.Error("payment confirmation failed", slog.Int("attempts", attempts), slog.String("error", err.Error()))
		return u.finish(pathSuccess, failedOutcome()), nil
	}
}

// ConfirmCancel looks the order up by id (only with a session token) and by
// gateway code, merging whatever succeeded. Each lookup is made once.
func (u *paymentUseCaseImpl) ConfirmCancel(ctx context.Context, orderID, orderCode, token string) (*payment.Outcome, error) {
	if orderID == "" && orderCode == "" {
		return nil, errs.ErrOrderReferenceRequired
	}
	logger := u.logger.With(slog.String("order_id", orderID), slog.String("order_code", orderCode))

	if err := u.settle(ctx); err != nil {
		return u.finish(pathCancel, failedOutcome()), nil
	}

	var (
		byID, byCode *shared.OrderRecord
		attempted    bool
		// every failed lookup answered "no such order"
		notFound = true
	)
	if token != "" && orderID != "" {
		attempted = true
		rec, err := u.gateway.GetOrderStatus(ctx, orderID, token)
		if err != nil {
			logger.Warn("order status lookup by id failed", slog.String("error", err.Error()))
			notFound = notFound && apierr.IsKind(err, apierr.KindNotFound)
		}
		byID = rec
	}
	if orderCode != "" {
		attempted = true
		rec, err := u.gateway.GetOrderByCode(ctx, orderCode, token)
		if err != nil {
			logger.Warn("order lookup by gateway code failed", slog.String("error", err.Error()))
			notFound = notFound && apierr.IsKind(err, apierr.KindNotFound)
		}
		byCode = rec
	}

	if !attempted {
		// nothing to look up without a session; the redirect itself says cancelled
		return u.finish(pathCancel, payment.Outcome{
			Phase: payment.PhaseResolved,
			Order: &payment.OrderInfo{OrderID: orderID, Status: payment.StatusCancelled},
		}), nil
	}

	merged, err := mergeRecords(byID, byCode)
	if err != nil {
		logger.Error("failed to merge order records", slog.String("error", err.Error()))
		return u.finish(pathCancel, failedOutcome()), nil
	}
	if merged == nil {
		if notFound {
			return u.finish(pathCancel, payment.Outcome{Phase: payment.PhaseError, Message: payment.MessageOrderNotFound}), nil
		}
		return u.finish(pathCancel, failedOutcome()), nil
	}

	info, err := recordOrder(merged)
	if err != nil {
		logger.Error("failed to map order record", slog.String("error", err.Error()))
		return u.finish(pathCancel, failedOutcome()), nil
	}
	if info.OrderID == "" {
		info.OrderID = orderID
	}
	if info.OrderCode == "" {
		info.OrderCode = orderCode
	}
	return u.finish(pathCancel, payment.Outcome{Phase: payment.PhaseResolved, Order: info}), nil
}

// settle waits for the backend to process the gateway webhook.
func (u *paymentUseCaseImpl) settle(ctx context.Context) error {
	if u.cfg.WebhookDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(u.cfg.WebhookDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *paymentUseCaseImpl) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.cfg.PollInitial
	b.MaxInterval = u.cfg.PollMaxInterval
	b.MaxElapsedTime = u.cfg.PollTimeout
	b.Reset()

	var policy backoff.BackOff = b
	if u.cfg.PollMaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, u.cfg.PollMaxAttempts-1)
	}
	return backoff.WithContext(policy, ctx)
}

func (u *paymentUseCaseImpl) finish(path string, out payment.Outcome) *payment.Outcome {
	u.metrics.Confirmations.WithLabelValues(path, string(out.Phase)).Inc()
	return &out
}

func failedOutcome() payment.Outcome {
	return payment.Outcome{Phase: payment.PhaseError, Message: payment.MessageConfirmationFailed}
}

func callbackOrder(res *shared.CallbackResult) *payment.OrderInfo {
	return &payment.OrderInfo{
		OrderID:     res.OrderID,
		OrderCode:   res.OrderCode,
		Status:      payment.StatusFromCallbackCode(res.Status),
		TotalAmount: res.TotalAmount,
		CreatedAt:   res.CreatedAt,
		Message:     res.Message,
	}
}

// mergeRecords overlays the by-id record onto the by-code one; non-empty by-id fields win.
func mergeRecords(byID, byCode *shared.OrderRecord) (*shared.OrderRecord, error) {
	switch {
	case byID == nil && byCode == nil:
		return nil, nil
	case byID == nil:
		return byCode, nil
	case byCode == nil:
		return byID, nil
	}
	merged := *byCode
	if err := copier.CopyWithOption(&merged, byID, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, errs.Wrap(err, "merge order records")
	}
	return &merged, nil
}

func recordOrder(rec *shared.OrderRecord) (*payment.OrderInfo, error) {
	var info payment.OrderInfo
	if err := copier.Copy(&info, rec); err != nil {
		return nil, errs.Wrap(err, "copy order record")
	}
	info.Status = payment.ParseStatus(rec.Status)
	return &info, nil
}
