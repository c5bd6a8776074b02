//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// FakeBackend stands in for the tourism backend: product stock and the payment
// endpoints the gateway polls.
type FakeBackend struct {
	server *httptest.Server

	mu               sync.Mutex
	products         map[string]fakeProduct
	callbackStatuses []int
	ordersByID       map[string]map[string]any
	ordersByCode     map[string]map[string]any
	confirmCalls     int
	idempotencyKeys  []string
}

type fakeProduct struct {
	Name  string
	Stock int
}

func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{}
	f.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{id}", f.getProduct)
	mux.HandleFunc("POST /api/payments/confirm-callback", f.confirmCallback)
	mux.HandleFunc("GET /api/orders/{id}/payment-status", f.orderStatus)
	mux.HandleFunc("GET /api/payments/orders/{code}", f.orderByCode)
	f.server = httptest.NewServer(mux)
	return f
}

func (f *FakeBackend) URL() string {
	return f.server.URL
}

func (f *FakeBackend) Close() {
	f.server.Close()
}

func (f *FakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = make(map[string]fakeProduct)
	f.callbackStatuses = nil
	f.ordersByID = make(map[string]map[string]any)
	f.ordersByCode = make(map[string]map[string]any)
	f.confirmCalls = 0
	f.idempotencyKeys = nil
}

func (f *FakeBackend) SetProduct(id, name string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = fakeProduct{Name: name, Stock: stock}
}

// QueueCallbackStatuses sets the numeric statuses returned by successive
// confirmation callbacks; the last one repeats.
func (f *FakeBackend) QueueCallbackStatuses(statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbackStatuses = statuses
}

func (f *FakeBackend) SetOrder(order map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := order["orderId"].(string); ok {
		f.ordersByID[id] = order
	}
	if code, ok := order["orderCode"]; ok {
		f.ordersByCode[toString(code)] = order
	}
}

func (f *FakeBackend) ConfirmCalls() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmCalls, append([]string(nil), f.idempotencyKeys...)
}

func (f *FakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	p, ok := f.products[r.PathValue("id")]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": "NOT_FOUND", "message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"id": r.PathValue("id"), "name": p.Name, "quantityInStock": p.Stock},
	})
}

func (f *FakeBackend) confirmCallback(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")

	f.mu.Lock()
	f.confirmCalls++
	f.idempotencyKeys = append(f.idempotencyKeys, r.Header.Get("Idempotency-Key"))
	status := 0
	if n := len(f.callbackStatuses); n > 0 {
		status = f.callbackStatuses[0]
		if n > 1 {
			f.callbackStatuses = f.callbackStatuses[1:]
		}
	}
	order := f.ordersByID[orderID]
	f.mu.Unlock()

	body := map[string]any{"status": status, "orderId": orderID}
	for _, k := range []string{"orderCode", "totalAmount", "createdAt"} {
		if v, ok := order[k]; ok {
			body[k] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeBackend) orderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "UNAUTHORIZED", "message": "Unauthorized"})
		return
	}
	f.mu.Lock()
	order, ok := f.ordersByID[r.PathValue("id")]
	f.mu.Unlock()
	f.writeOrder(w, order, ok)
}

func (f *FakeBackend) orderByCode(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	order, ok := f.ordersByCode[r.PathValue("code")]
	f.mu.Unlock()
	f.writeOrder(w, order, ok)
}

func (f *FakeBackend) writeOrder(w http.ResponseWriter, order map[string]any, ok bool) {
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": "NOT_FOUND", "message": "Order not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": order})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
