//go:build e2e

package cart_test

import (
	"net/http"
	"testing"

	"storefront-gateway/internal/domain/cart"
	resdto "storefront-gateway/internal/handler/dto/response"
	"storefront-gateway/tests/common/authtest"
	"storefront-gateway/tests/common/dbtest"
	"storefront-gateway/tests/common/httptest"
	"storefront-gateway/tests/e2e"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	cartURL          = "/api/cart"
	itemsURL         = "/api/cart/items"
	validateURL      = "/api/cart/validate"
	notificationsURL = "/api/notifications"
)

type cartSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestCartSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(cartSuite))
}

func (s *cartSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

// newCustomer returns a fresh user id and token; carts stay loaded in the
// gateway between sub tests, so every sub test uses its own session.
func (s *cartSuite) newCustomer() (string, string) {
	userID := "user-" + uuid.NewString()
	return userID, s.jwtHelper.GenerateToken(s.T(), userID)
}

func (s *cartSuite) addItem(token string, body map[string]any) *resdto.CartItemResponse {
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, itemsURL, body, token)
	var item resdto.CartItemResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &item)
	return &item
}

func (s *cartSuite) TestAddItemPersistsCart() {
	s.Run("product stock is fetched and the cart is stored", func() {
		s.Backend.SetProduct("prod-1", "Nón lá Huế", 5)
		userID, token := s.newCustomer()

		item := s.addItem(token, map[string]any{
			"productId": "prod-1", "price": "150000", "quantity": 2, "type": "product",
		})
		s.Equal("Nón lá Huế", item.Name)
		s.Equal(5, item.MaxQuantity)
		s.True(item.CanIncrease)

		stored, ok := dbtest.LoadCart(s.T(), s.DB, s.CartKey(userID))
		require.True(s.T(), ok)
		require.Len(s.T(), stored.Items, 1)
		s.Equal(2, stored.Items[0].Quantity)
		s.Equal(5, *stored.Items[0].Stock)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, cartURL, nil, token)
		var view resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
		s.Equal(2, view.TotalQuantity)
		s.Equal("300.000 ₫", view.FormattedTotal)
	})

	s.Run("adding the same product merges lines", func() {
		s.Backend.SetProduct("prod-1", "Nón lá Huế", 5)
		_, token := s.newCustomer()

		s.addItem(token, map[string]any{"productId": "prod-1", "price": "150000", "quantity": 1, "type": "product"})
		item := s.addItem(token, map[string]any{"productId": "prod-1", "price": "150000", "quantity": 2, "type": "product"})
		s.Equal(3, item.Quantity)
	})

	s.Run("more than stock is rejected", func() {
		s.Backend.SetProduct("prod-2", "Áo dài", 1)
		_, token := s.newCustomer()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, itemsURL,
			map[string]any{"productId": "prod-2", "price": "800000", "quantity": 2, "type": "product"}, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "exceeds available stock")
	})

	s.Run("unknown product", func() {
		_, token := s.newCustomer()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, itemsURL,
			map[string]any{"productId": "missing", "price": "1000", "quantity": 1, "type": "product"}, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Product not found")
	})

	s.Run("tours are capped without a stock lookup", func() {
		_, token := s.newCustomer()

		item := s.addItem(token, map[string]any{
			"productId": "tour-hoi-an", "name": "Hội An by night", "price": "450000", "quantity": 150, "type": "tour",
		})
		s.Equal(cart.TourQuantityCap, item.Quantity)
		s.True(item.CanIncrease)
	})
}

func (s *cartSuite) TestCartIsRestoredFromStorage() {
	s.Run("a stored cart is loaded on first access", func() {
		userID, token := s.newCustomer()
		stock := 4
		dbtest.SeedCart(s.T(), s.DB, s.CartKey(userID), cart.Cart{Items: []cart.Item{{
			ID: "line-1", ProductID: "prod-9", Name: "Cà phê Buôn Ma Thuột",
			Price: decimal.NewFromInt(120000), Quantity: 3, Type: cart.ItemTypeProduct, Stock: &stock,
		}}})

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, cartURL, nil, token)
		var view resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
		require.Len(s.T(), view.Items, 1)
		s.Equal("line-1", view.Items[0].ID)
		s.Equal("360.000 ₫", view.FormattedTotal)
	})
}

func (s *cartSuite) TestValidateCartClampsToStock() {
	s.Run("lines above stock are reduced and a warning is queued", func() {
		s.Backend.SetProduct("prod-3", "Tranh sơn mài", 5)
		_, token := s.newCustomer()
		item := s.addItem(token, map[string]any{"productId": "prod-3", "price": "500000", "quantity": 4, "type": "product"})

		s.Backend.SetProduct("prod-3", "Tranh sơn mài", 1)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, validateURL, nil, token)
		var report resdto.ValidationReportResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &report)
		s.Equal(1, report.Checked)
		require.Len(s.T(), report.Adjusted, 1)
		s.Equal(item.ID, report.Adjusted[0].ItemID)
		s.Equal(4, report.Adjusted[0].PreviousQuantity)
		s.Equal(1, report.Adjusted[0].Quantity)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, notificationsURL, nil, token)
		var notes []resdto.NotificationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &notes)
		require.Len(s.T(), notes, 2)
		s.Equal("success", notes[0].Level)
		s.Equal(int64(3000), notes[0].DurationMs)
		s.Equal("warning", notes[1].Level)

		// drained
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, notificationsURL, nil, token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &notes)
		s.Empty(notes)
	})

	s.Run("sold out lines stay at zero", func() {
		s.Backend.SetProduct("prod-4", "Lụa Hà Đông", 2)
		userID, token := s.newCustomer()
		s.addItem(token, map[string]any{"productId": "prod-4", "price": "300000", "quantity": 2, "type": "product"})

		s.Backend.SetProduct("prod-4", "Lụa Hà Đông", 0)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, validateURL, nil, token)
		var report resdto.ValidationReportResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &report)
		require.Len(s.T(), report.Adjusted, 1)
		s.True(report.Adjusted[0].OutOfStock)

		stored, ok := dbtest.LoadCart(s.T(), s.DB, s.CartKey(userID))
		require.True(s.T(), ok)
		require.Len(s.T(), stored.Items, 1)
		s.Equal(0, stored.Items[0].Quantity)
	})
}

func (s *cartSuite) TestUpdateAndRemove() {
	s.Run("update, remove and clear", func() {
		s.Backend.SetProduct("prod-5", "Nước mắm Phú Quốc", 10)
		userID, token := s.newCustomer()
		item := s.addItem(token, map[string]any{"productId": "prod-5", "price": "90000", "quantity": 1, "type": "product"})

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPatch, itemsURL+"/"+item.ID, map[string]any{"quantity": 6}, token)
		var updated resdto.CartItemResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &updated)
		s.Equal(6, updated.Quantity)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPatch, itemsURL+"/"+item.ID, map[string]any{"quantity": 11}, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, itemsURL+"/"+item.ID+"/limits?type=product", nil, token)
		var limits resdto.LimitsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &limits)
		s.Equal(10, limits.MaxQuantity)
		s.True(limits.CanIncrease)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodDelete, itemsURL+"/"+item.ID, nil, token)
		s.Equal(http.StatusNoContent, rec.Code)

		_, ok := dbtest.LoadCart(s.T(), s.DB, s.CartKey(userID))
		s.False(ok, "an empty cart is not stored")

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodDelete, itemsURL+"/"+item.ID, nil, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Cart item not found")
	})
}

func (s *cartSuite) TestGuestSession() {
	s.Run("guest carts follow the session cookie", func() {
		s.Backend.SetProduct("prod-6", "Đèn lồng", 3)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, itemsURL,
			map[string]any{"productId": "prod-6", "price": "75000", "quantity": 1, "type": "product"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)

		sessionCookie := httptest.ExtractCookie(rec, "cart_session")
		require.NotNil(s.T(), sessionCookie)

		_, ok := dbtest.LoadCart(s.T(), s.DB, s.CartKey("guest-"+sessionCookie.Value))
		s.True(ok)

		rec = httptest.PerformRequestWithCookies(s.T(), s.Router, http.MethodGet, cartURL, nil, []*http.Cookie{sessionCookie}, "")
		var view resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
		s.Equal(1, view.TotalQuantity)

		rec = httptest.PerformRequestWithCookies(s.T(), s.Router, http.MethodDelete, cartURL+"/session", nil, []*http.Cookie{sessionCookie}, "")
		s.Equal(http.StatusNoContent, rec.Code)
		cleared := httptest.ExtractCookie(rec, "cart_session")
		require.NotNil(s.T(), cleared)
		s.Less(cleared.MaxAge, 0)
	})

	s.Run("an expired token is treated as a guest", func() {
		userID := "user-" + uuid.NewString()
		token := s.jwtHelper.CreateExpiredToken(s.T(), userID)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, cartURL, nil, token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.NotNil(httptest.ExtractCookie(rec, "cart_session"))
	})
}
