//go:build unit

package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront-gateway/internal/infra/backend"
	"storefront-gateway/internal/pkg/apierr"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*backend.Client, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.NewTestConfig().Backend
	cfg.BaseURL = srv.URL
	m := metrics.NewNop()
	return backend.NewClient(cfg, m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_GetStock(t *testing.T) {
	client, m := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products/p-1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "p-1", "name": "Nón lá", "quantityInStock": 7})
	}))

	snap, err := client.GetStock(context.Background(), "p-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "p-1", snap.ProductID)
	assert.Equal(t, "Nón lá", snap.Name)
	assert.Equal(t, 7, snap.QuantityInStock)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BackendRequests.WithLabelValues("product", "ok")), 0)
}

func TestClient_GetStock_NotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
	}))

	for i := 0; i < 5; i++ {
		_, err := client.GetStock(context.Background(), "gone", "")
		require.Error(t, err)
		assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
	}
	assert.EqualValues(t, 5, hits.Load())
}

func TestClient_GetStock_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	client, m := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	// test config trips after three consecutive failures
	for i := 0; i < 3; i++ {
		_, err := client.GetStock(context.Background(), "p-1", "")
		assert.True(t, apierr.IsKind(err, apierr.KindServer))
	}

	_, err := client.GetStock(context.Background(), "p-1", "")
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindNetwork))
	assert.EqualValues(t, 3, hits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(m.BackendRequests.WithLabelValues("product", "circuit_open")), 0)
}

func TestClient_ConfirmCallback(t *testing.T) {
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("payment-confirm:ORD123"))
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments/confirm-callback", r.URL.Path)
		assert.Equal(t, "ORD123", r.URL.Query().Get("orderId"))
		assert.Equal(t, key.String(), r.Header.Get("Idempotency-Key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"status":      1,
				"orderId":     "ORD123",
				"orderCode":   123456789,
				"totalAmount": "500000",
				"createdAt":   "2024-01-01T00:00:00",
			},
		})
	}))

	res, err := client.ConfirmCallback(context.Background(), "ORD123", "", key)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
	assert.Equal(t, "ORD123", res.OrderID)
	assert.Equal(t, "123456789", res.OrderCode)
	assert.True(t, decimal.NewFromInt(500000).Equal(res.TotalAmount))
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(res.CreatedAt))
}

func TestClient_OrderLookups(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/ORD123/payment-status":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"id":        "ORD123",
				"status":    "CANCELLED",
				"amount":    250000,
				"createdAt": "2024-03-05T08:30:00+07:00",
			})
		case "/api/payments/orders/PAYOS999":
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"orderCode": "PAYOS999", "status": "PENDING"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	byID, err := client.GetOrderStatus(context.Background(), "ORD123", "tok")
	require.NoError(t, err)
	assert.Equal(t, "ORD123", byID.OrderID)
	assert.Equal(t, "CANCELLED", byID.Status)
	assert.True(t, decimal.NewFromInt(250000).Equal(byID.TotalAmount))
	assert.Equal(t, 1, byID.CreatedAt.UTC().Hour())

	byCode, err := client.GetOrderByCode(context.Background(), "PAYOS999", "")
	require.NoError(t, err)
	assert.Equal(t, "PAYOS999", byCode.OrderCode)
	assert.Equal(t, "PENDING", byCode.Status)
}

func TestClient_ErrorClassification(t *testing.T) {
	client, m := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid order",
			"errors":  map[string][]string{"$.orderId": {"must not be empty"}},
		})
	}))

	_, err := client.GetOrderByCode(context.Background(), "x", "")
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, map[string]string{"orderId": "must not be empty"}, apiErr.Fields)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BackendRequests.WithLabelValues("order_by_code", "validation")), 0)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := config.NewTestConfig().Backend
	cfg.BaseURL = srv.URL
	client := backend.NewClient(cfg, metrics.NewNop(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.GetOrderStatus(context.Background(), "ORD123", "tok")
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindNetwork))
}
