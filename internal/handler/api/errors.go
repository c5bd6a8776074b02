package api

import (
	"context"
	"log/slog"
	"net/http"

	"storefront-gateway/internal/handler/httperr"
	"storefront-gateway/internal/pkg/apierr"
	"storefront-gateway/internal/pkg/errs"
	"storefront-gateway/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// statusClientClosedRequest is logged when the browser gave up before we answered.
const statusClientClosedRequest = 499

var errSessionMissing = errs.New("cart session not resolved")

// abortWithUseCaseError maps use case failures onto HTTP responses.
func abortWithUseCaseError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrCartItemNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Cart item not found", nil)
	case errs.Is(err, commands.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Product not found", httperr.NewBackendDetail(err))
	case errs.Is(err, errs.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusConflict, err, "Requested quantity exceeds available stock", nil)
	case errs.Is(err, errs.ErrInvalidQuantity), errs.Is(err, commands.ErrInvalidCartItem):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cart item", nil)
	case errs.Is(err, errs.ErrOrderReferenceRequired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "orderId or orderCode is required", nil)
	case errs.Is(err, errs.ErrBackendOperationFailed):
		detail := httperr.NewBackendDetail(err)
		httperr.AbortWithError(c, http.StatusBadGateway, err, apierr.UserMessage(detail.Kind), detail)
	case errs.Is(err, errs.ErrPersistenceFailed), errs.Is(err, errs.ErrCartStoreClosed):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Cart is temporarily unavailable", nil)
	case errs.Is(err, context.Canceled):
		httperr.AbortWithError(c, statusClientClosedRequest, err, "Request cancelled", nil)
	case errs.Is(err, context.DeadlineExceeded):
		httperr.AbortWithError(c, http.StatusGatewayTimeout, err, "Request timed out", nil)
	default:
		slog.Error("unmapped use case error",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
			slog.Any("stack", errs.ExtractStackLines(err, 12)))
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
