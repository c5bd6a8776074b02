package api

import (
	"net/http"

	"storefront-gateway/internal/domain/cart"
	reqdto "storefront-gateway/internal/handler/dto/request"
	resdto "storefront-gateway/internal/handler/dto/response"
	"storefront-gateway/internal/handler/httperr"
	"storefront-gateway/internal/handler/middleware"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/cookie"
	"storefront-gateway/internal/usecase/commands"
	"storefront-gateway/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cmds      commands.CartCommands
	q         queries.CartQueries
	cookieCfg config.CookieConfig
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries, cfg config.Config) *CartHandler {
	return &CartHandler{cmds: cmds, q: q, cookieCfg: cfg.Cookie}
}

func sessionRef(c *gin.Context) (commands.SessionRef, bool) {
	id, ok := middleware.GetCartSessionID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errSessionMissing, "Internal server error", nil)
		return commands.SessionRef{}, false
	}
	return commands.SessionRef{UserID: id, Token: middleware.GetSessionToken(c)}, true
}

// @Summary Get cart
// @Description Get the current session's cart with cached stock ceilings
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 503 {object} httperr.Response
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	view, err := h.q.GetCart(c.Request.Context(), ref.UserID, ref.Token)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Add cart item
// @Description Add a product or tour line. Products without a known stock ceiling are checked against the backend first.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddCartItemRequest true "Add item request"
// @Success 201 {object} resdto.CartItemResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	var req reqdto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid item type", nil)
		return
	}

	line, err := h.cmds.AddItem(c.Request.Context(), ref, in)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCartItem(line))
}

// @Summary Update cart item quantity
// @Description Set a line's quantity. Zero removes the line.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Param request body reqdto.UpdateCartItemRequest true "Update quantity request"
// @Success 200 {object} resdto.CartItemResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	var req reqdto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	line, err := h.cmds.UpdateQuantity(c.Request.Context(), ref, c.Param("id"), *req.Quantity)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartItem(line))
}

// @Summary Remove cart item
// @Tags cart
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	if err := h.cmds.RemoveItem(c.Request.Context(), ref, c.Param("id")); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Clear cart
// @Description Empty the cart after checkout completion
// @Tags cart
// @Security BearerAuth
// @Success 204
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	if err := h.cmds.ClearCart(c.Request.Context(), ref); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Validate cart
// @Description Re-check every product line against server stock and clamp quantities that no longer fit
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ValidationReportResponse
// @Router /cart/validate [post]
func (h *CartHandler) ValidateCart(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	report, err := h.cmds.ValidateCart(c.Request.Context(), ref)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReport(report))
}

// @Summary Get quantity limits
// @Description Whether a line can be increased and its maximum quantity, from the cached ceiling only
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Param type query string true "Item type" Enums(product, tour)
// @Success 200 {object} resdto.LimitsResponse
// @Failure 400 {object} httperr.Response
// @Router /cart/items/{id}/limits [get]
func (h *CartHandler) GetLimits(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	var query reqdto.LimitsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	itemType, err := cart.ParseItemType(query.Type)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid item type", nil)
		return
	}

	view, err := h.q.GetLimits(c.Request.Context(), ref.UserID, c.Param("id"), itemType)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary End cart session
// @Description Drop the cart on logout and stop its stock watcher
// @Tags cart
// @Security BearerAuth
// @Success 204
// @Router /cart/session [delete]
func (h *CartHandler) EndSession(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	if err := h.cmds.EndSession(c.Request.Context(), ref); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	if middleware.IsGuestSession(ref.UserID) {
		cookie.ClearCartSession(c, h.cookieCfg)
	}
	c.Status(http.StatusNoContent)
}
