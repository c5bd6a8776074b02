package api

import (
	"net/http"
	"time"

	reqdto "storefront-gateway/internal/handler/dto/request"
	resdto "storefront-gateway/internal/handler/dto/response"
	"storefront-gateway/internal/handler/httperr"
	"storefront-gateway/internal/handler/middleware"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves the pages the payment gateway redirects back to.
// Both endpoints answer 200 with a phase; only a missing order reference is a 400.
type PaymentHandler struct {
	cmds commands.PaymentCommands
	loc  *time.Location
}

func NewPaymentHandler(cmds commands.PaymentCommands, cfg config.Config) *PaymentHandler {
	return &PaymentHandler{cmds: cmds, loc: cfg.Display.Location()}
}

// @Summary Confirm successful payment
// @Description Wait for the gateway webhook to settle, then poll the confirmation callback until the order reaches a terminal status
// @Tags payments
// @Produce json
// @Param orderId query string false "Order ID"
// @Success 200 {object} resdto.PaymentOutcomeResponse
// @Failure 400 {object} httperr.Response
// @Router /payments/success [get]
func (h *PaymentHandler) Success(c *gin.Context) {
	var query reqdto.PaymentReturnQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	query = query.Normalized()

	out, err := h.cmds.ConfirmSuccess(c.Request.Context(), query.OrderID, middleware.GetSessionToken(c))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOutcome(out, h.loc))
}

// @Summary Confirm cancelled payment
// @Description Look the order up by id (signed-in users) and by gateway order code, merging whichever answers
// @Tags payments
// @Produce json
// @Param orderId query string false "Order ID"
// @Param orderCode query string false "Gateway order code"
// @Success 200 {object} resdto.PaymentOutcomeResponse
// @Failure 400 {object} httperr.Response
// @Router /payments/cancel [get]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	var query reqdto.PaymentReturnQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	query = query.Normalized()

	out, err := h.cmds.ConfirmCancel(c.Request.Context(), query.OrderID, query.OrderCode, middleware.GetSessionToken(c))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOutcome(out, h.loc))
}
