//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"storefront-gateway/internal/domain/payment"
	"storefront-gateway/internal/handler/api"
	resdto "storefront-gateway/internal/handler/dto/response"
	"storefront-gateway/internal/handler/middleware"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/pkg/jwt"
	"storefront-gateway/tests/common/httptest"
	commandsmock "storefront-gateway/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
	token        string
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)

	cfg := config.NewTestConfig()
	jwtService := jwt.NewService(cfg.JWT.Secret)
	token, err := jwtService.GenerateToken(testUserID, "customer", time.Hour)
	s.Require().NoError(err)
	s.token = token

	auth := middleware.NewAuthMiddleware(jwtService, cfg)
	h := api.NewPaymentHandler(s.mockCommands, cfg)

	g := s.router.Group("/api/payments", auth.OptionalAuth())
	g.GET("/success", h.Success)
	g.GET("/cancel", h.Cancel)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestSuccess() {
	s.Run("resolved order is rendered for display", func() {
		s.mockCommands.EXPECT().ConfirmSuccess(gomock.Any(), "ORD123", "").Return(&payment.Outcome{
			Phase: payment.PhaseResolved,
			Order: &payment.OrderInfo{
				OrderID:     "ORD123",
				Status:      payment.StatusSuccess,
				TotalAmount: decimal.NewFromInt(500000),
				CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/success?orderId=ORD123", nil, "")

		var got resdto.PaymentOutcomeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal("resolved", got.Phase)
		s.Require().NotNil(got.Order)
		s.Equal("success", got.Order.Status)
		s.Equal("Thành công", got.Order.StatusLabel)
		s.Equal("500.000 ₫", got.Order.FormattedAmount)
		s.Equal("01/01/2024 00:00", got.Order.FormattedCreatedAt)
	})

	s.Run("forwards the session token", func() {
		s.mockCommands.EXPECT().ConfirmSuccess(gomock.Any(), "ORD123", s.token).
			Return(&payment.Outcome{Phase: payment.PhaseUnknown, Message: payment.MessageStatusUnknown}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/success?orderId=%20ORD123%20", nil, s.token)

		var got resdto.PaymentOutcomeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal("unknown", got.Phase)
		s.Equal(payment.MessageStatusUnknown, got.Message)
		s.Nil(got.Order)
	})

	s.Run("error phase is still a 200", func() {
		s.mockCommands.EXPECT().ConfirmSuccess(gomock.Any(), "ORD123", "").
			Return(&payment.Outcome{Phase: payment.PhaseError, Message: payment.MessageConfirmationFailed}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/success?orderId=ORD123", nil, "")

		var got resdto.PaymentOutcomeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal("error", got.Phase)
		s.Equal(payment.MessageConfirmationFailed, got.Message)
	})

	s.Run("missing order id", func() {
		s.mockCommands.EXPECT().ConfirmSuccess(gomock.Any(), "", "").Return(nil, errs.ErrOrderReferenceRequired)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/success", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "orderId or orderCode is required")
	})
}

func (s *PaymentHandlerTestSuite) TestCancel() {
	s.Run("order code only, anonymous", func() {
		s.mockCommands.EXPECT().ConfirmCancel(gomock.Any(), "", "PAYOS999", "").Return(&payment.Outcome{
			Phase: payment.PhaseResolved,
			Order: &payment.OrderInfo{OrderCode: "PAYOS999", Status: payment.StatusCancelled},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/cancel?orderCode=PAYOS999", nil, "")

		var got resdto.PaymentOutcomeResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &got)
		s.Equal("Đã hủy", got.Order.StatusLabel)
		s.Equal("0 ₫", got.Order.FormattedAmount)
		s.Nil(got.Order.CreatedAt)
	})

	s.Run("both references with token", func() {
		s.mockCommands.EXPECT().ConfirmCancel(gomock.Any(), "ORD123", "PAYOS999", s.token).
			Return(&payment.Outcome{Phase: payment.PhaseResolved, Order: &payment.OrderInfo{OrderID: "ORD123", Status: payment.StatusCancelled}}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/payments/cancel?orderId=ORD123&orderCode=PAYOS999", nil, s.token)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}
