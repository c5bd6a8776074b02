package api

import (
	"net/http"

	resdto "storefront-gateway/internal/handler/dto/response"
	"storefront-gateway/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	q queries.NotificationQueries
}

func NewNotificationHandler(q queries.NotificationQueries) *NotificationHandler {
	return &NotificationHandler{q: q}
}

// @Summary Drain notifications
// @Description Return and forget the pending stock notifications of the current cart session
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.NotificationResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resdto.FromNotifications(h.q.Drain(ref.UserID)))
}
