// Package backend is the HTTP client of the tourism REST backend. It implements
// the stock and payment ports of the use case layer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-gateway/internal/pkg/apierr"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/pkg/metrics"
	"storefront-gateway/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	endpointProduct       = "product"
	endpointConfirm       = "confirm_callback"
	endpointOrderStatus   = "order_status"
	endpointOrderByCode   = "order_by_code"
	outcomeOK             = "ok"
	outcomeCircuitOpen    = "circuit_open"
	headerIdempotencyKey  = "Idempotency-Key"
	maxBodyBytes          = 1 << 20
	maxErrorBodyBytes     = 64 << 10
	defaultBreakerTimeout = 30 * time.Second
)

type Client struct {
	http    *http.Client
	baseURL string
	stock   *gobreaker.CircuitBreaker[*shared.StockSnapshot]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewClient(cfg config.BackendConfig, m *metrics.Metrics, logger *slog.Logger) *Client {
	return newClient(cfg, otelhttp.NewTransport(http.DefaultTransport), m, logger)
}

func newClient(cfg config.BackendConfig, transport http.RoundTripper, m *metrics.Metrics, logger *slog.Logger) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openFor := cfg.BreakerOpenFor
	if openFor <= 0 {
		openFor = defaultBreakerTimeout
	}

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		metrics: m,
		logger:  logger,
	}
	c.stock = gobreaker.NewCircuitBreaker[*shared.StockSnapshot](gobreaker.Settings{
		Name:    "backend-stock",
		Timeout: openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// client errors (unknown product, bad id) say nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || !apierr.KindOf(err).Retryable()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return c
}

type productResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	QuantityInStock int    `json:"quantityInStock"`
}

// GetStock fetches the authoritative stock of a product. While the circuit is
// open calls fail fast with a network-kind error.
func (c *Client) GetStock(ctx context.Context, productID, token string) (*shared.StockSnapshot, error) {
	snap, err := c.stock.Execute(func() (*shared.StockSnapshot, error) {
		var resp productResponse
		if err := c.do(ctx, endpointProduct, http.MethodGet, "/api/products/"+url.PathEscape(productID), token, nil, &resp); err != nil {
			return nil, err
		}
		id := resp.ID
		if id == "" {
			id = productID
		}
		return &shared.StockSnapshot{ProductID: id, Name: resp.Name, QuantityInStock: resp.QuantityInStock}, nil
	})
	if errs.Is(err, gobreaker.ErrOpenState) || errs.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.BackendRequests.WithLabelValues(endpointProduct, outcomeCircuitOpen).Inc()
		return nil, apierr.Network(err)
	}
	return snap, err
}

type callbackResponse struct {
	Status      int         `json:"status"`
	OrderID     string      `json:"orderId"`
	OrderCode   flexString  `json:"orderCode"`
	TotalAmount flexDecimal `json:"totalAmount"`
	CreatedAt   timestamp   `json:"createdAt"`
	Message     string      `json:"message"`
}

func (c *Client) ConfirmCallback(ctx context.Context, orderID, token string, idempotencyKey uuid.UUID) (*shared.CallbackResult, error) {
	path := "/api/payments/confirm-callback?orderId=" + url.QueryEscape(orderID)
	headers := http.Header{}
	headers.Set(headerIdempotencyKey, idempotencyKey.String())

	var resp callbackResponse
	if err := c.doWithHeaders(ctx, endpointConfirm, http.MethodPost, path, token, headers, struct{}{}, &resp); err != nil {
		return nil, err
	}
	out := &shared.CallbackResult{
		Status:      resp.Status,
		OrderID:     resp.OrderID,
		OrderCode:   string(resp.OrderCode),
		TotalAmount: resp.TotalAmount.Decimal,
		CreatedAt:   resp.CreatedAt.Time,
		Message:     resp.Message,
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	return out, nil
}

type orderResponse struct {
	OrderID     string      `json:"orderId"`
	ID          string      `json:"id"`
	OrderCode   flexString  `json:"orderCode"`
	Status      string      `json:"status"`
	TotalAmount flexDecimal `json:"totalAmount"`
	Amount      flexDecimal `json:"amount"`
	CreatedAt   timestamp   `json:"createdAt"`
	Message     string      `json:"message"`
}

func (r orderResponse) record() *shared.OrderRecord {
	rec := &shared.OrderRecord{
		OrderID:     r.OrderID,
		OrderCode:   string(r.OrderCode),
		Status:      r.Status,
		TotalAmount: r.TotalAmount.Decimal,
		CreatedAt:   r.CreatedAt.Time,
		Message:     r.Message,
	}
	if rec.OrderID == "" {
		rec.OrderID = r.ID
	}
	if rec.TotalAmount.IsZero() {
		rec.TotalAmount = r.Amount.Decimal
	}
	return rec
}

// GetOrderStatus looks an order up by id. The endpoint requires a bearer token.
func (c *Client) GetOrderStatus(ctx context.Context, orderID, token string) (*shared.OrderRecord, error) {
	var resp orderResponse
	path := "/api/orders/" + url.PathEscape(orderID) + "/payment-status"
	if err := c.do(ctx, endpointOrderStatus, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.record(), nil
}

// GetOrderByCode looks an order up by the payment gateway's order code. token may be empty.
func (c *Client) GetOrderByCode(ctx context.Context, orderCode, token string) (*shared.OrderRecord, error) {
	var resp orderResponse
	path := "/api/payments/orders/" + url.PathEscape(orderCode)
	if err := c.do(ctx, endpointOrderByCode, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.record(), nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path, token string, body, out any) error {
	return c.doWithHeaders(ctx, endpoint, method, path, token, nil, body, out)
}

func (c *Client) doWithHeaders(ctx context.Context, endpoint, method, path, token string, headers http.Header, body, out any) error {
	err := c.roundTrip(ctx, method, path, token, headers, body, out)
	outcome := outcomeOK
	if err != nil {
		outcome = strings.ToLower(string(apierr.KindOf(err)))
		c.logger.Debug("backend request failed",
			slog.String("endpoint", endpoint),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
	c.metrics.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, headers http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.Wrap(err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apierr.Network(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return apierr.Network(errs.Wrap(err, "read backend response"))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var eb apierr.Body
		if len(raw) > 0 && len(raw) <= maxErrorBodyBytes {
			_ = json.Unmarshal(raw, &eb) // non-JSON error pages keep the status-only classification
		}
		return apierr.FromResponse(res.StatusCode, eb)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(raw), out); err != nil {
		return errs.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// unwrapData accepts both bare payloads and the {"data": ...} envelope some endpoints use.
func unwrapData(raw []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data
	}
	return raw
}
