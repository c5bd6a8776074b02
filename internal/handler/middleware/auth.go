package middleware

import (
	"log/slog"
	"strings"

	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/cookie"
	"storefront-gateway/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenValidator verifies the session token issued by the tourism backend.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
	cookieCfg      config.CookieConfig
}

const (
	ctxUserIDKey      = "user_id"
	ctxUserRoleKey    = "user_role"
	ctxTokenKey       = "session_token"
	ctxCartSessionKey = "cart_session_id"

	guestSessionPrefix = "guest-"
)

func NewAuthMiddleware(tokenValidator TokenValidator, cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
		cookieCfg:      cfg.Cookie,
	}
}

// OptionalAuth authenticates the request if a token is present, but does not abort on failure.
// The raw token is kept so backend calls can be made on the user's behalf.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Debug("ignoring invalid session token", "error", err.Error())
			c.Next()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID())
		c.Set(ctxUserRoleKey, claims.Role)
		c.Set(ctxTokenKey, token)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.UserID(),
			"role":    claims.Role,
		})
		c.Next()
	}
}

// CartSession resolves whose cart the request addresses: the authenticated user,
// or a guest identified by the cart session cookie (issued on first use).
// Must run after OptionalAuth.
func (m *AuthMiddleware) CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := GetUserID(c); ok {
			c.Set(ctxCartSessionKey, userID)
			c.Next()
			return
		}

		guestID := cookie.GetCartSession(c)
		if _, err := uuid.Parse(guestID); err != nil {
			guestID = uuid.NewString()
			cookie.SetCartSession(c, m.cookieCfg, guestID)
		}
		c.Set(ctxCartSessionKey, guestSessionPrefix+guestID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := cookie.GetAccessToken(c); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetSessionToken returns the validated bearer token, or "" for anonymous requests.
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}

func GetCartSessionID(c *gin.Context) (string, bool) {
	id := c.GetString(ctxCartSessionKey)
	return id, id != ""
}

// IsGuestSession reports whether the cart session belongs to an anonymous visitor.
func IsGuestSession(sessionID string) bool {
	return strings.HasPrefix(sessionID, guestSessionPrefix)
}
