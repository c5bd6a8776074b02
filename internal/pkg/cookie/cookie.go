package cookie

import (
	"net/http"

	"storefront-gateway/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	// AccessTokenCookieName is set by the tourism backend on login.
	AccessTokenCookieName = "access_token"
	CartSessionCookieName = "cart_session"
)

// SetCartSession issues the cookie that identifies a guest cart.
func SetCartSession(c *gin.Context, cfg config.CookieConfig, sessionID string) {
	c.SetSameSite(getSameSite(cfg.SameSite))

	c.SetCookie(
		CartSessionCookieName,
		sessionID,
		int(cfg.SessionMaxAge.Seconds()),
		"/",
		cfg.Domain,
		cfg.Secure,
		true, // HttpOnly
	)
}

func ClearCartSession(c *gin.Context, cfg config.CookieConfig) {
	c.SetSameSite(getSameSite(cfg.SameSite))

	c.SetCookie(
		CartSessionCookieName,
		"",
		-1,
		"/",
		cfg.Domain,
		cfg.Secure,
		true,
	)
}

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

func GetCartSession(c *gin.Context) string {
	id, _ := c.Cookie(CartSessionCookieName)
	return id
}

func getSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
