//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-gateway/internal/handler/middleware"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/cookie"
	"storefront-gateway/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observed struct {
	userID    string
	hasUser   bool
	token     string
	sessionID string
}

func newAuthRouter(t *testing.T) (*gin.Engine, *observed, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	svc := jwt.NewService(cfg.JWT.Secret)
	token, err := svc.GenerateToken("user-7", "customer", time.Hour)
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(svc, cfg)
	seen := &observed{}

	r := gin.New()
	r.GET("/whoami", auth.OptionalAuth(), auth.CartSession(), func(c *gin.Context) {
		seen.userID, seen.hasUser = middleware.GetUserID(c)
		seen.token = middleware.GetSessionToken(c)
		seen.sessionID, _ = middleware.GetCartSessionID(c)
		c.Status(http.StatusNoContent)
	})
	return r, seen, token
}

func cartCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.CartSessionCookieName {
			return c
		}
	}
	return nil
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(req *http.Request, token string)
		wantUser  bool
		wantToken bool
	}{
		{
			name:      "bearer header",
			prepare:   func(req *http.Request, token string) { req.Header.Set("Authorization", "Bearer "+token) },
			wantUser:  true,
			wantToken: true,
		},
		{
			name: "access token cookie",
			prepare: func(req *http.Request, token string) {
				req.AddCookie(&http.Cookie{Name: cookie.AccessTokenCookieName, Value: token})
			},
			wantUser:  true,
			wantToken: true,
		},
		{
			name:    "anonymous",
			prepare: func(*http.Request, string) {},
		},
		{
			name:    "invalid token is ignored",
			prepare: func(req *http.Request, _ string) { req.Header.Set("Authorization", "Bearer not-a-jwt") },
		},
		{
			name:    "non bearer scheme",
			prepare: func(req *http.Request, token string) { req.Header.Set("Authorization", "Basic "+token) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen, token := newAuthRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.prepare(req, token)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantUser, seen.hasUser)
			if tt.wantUser {
				assert.Equal(t, "user-7", seen.userID)
				assert.Equal(t, "user-7", seen.sessionID)
				assert.Nil(t, cartCookie(rec), "signed-in users get no guest cookie")
			} else {
				assert.True(t, middleware.IsGuestSession(seen.sessionID))
			}
			if tt.wantToken {
				assert.Equal(t, token, seen.token)
			} else {
				assert.Empty(t, seen.token)
			}
		})
	}
}

func TestCartSession_Guest(t *testing.T) {
	t.Run("issues a cookie on first visit", func(t *testing.T) {
		r, seen, _ := newAuthRouter(t)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		c := cartCookie(rec)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, 3600, c.MaxAge)
		assert.Equal(t, "guest-"+c.Value, seen.sessionID)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		r, seen, _ := newAuthRouter(t)
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookie.CartSessionCookieName, Value: id})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Nil(t, cartCookie(rec))
		assert.Equal(t, "guest-"+id, seen.sessionID)
	})

	t.Run("replaces a tampered cookie", func(t *testing.T) {
		r, seen, _ := newAuthRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookie.CartSessionCookieName, Value: "../../other"})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		c := cartCookie(rec)
		require.NotNil(t, c)
		_, err := uuid.Parse(c.Value)
		assert.NoError(t, err)
		assert.Equal(t, "guest-"+c.Value, seen.sessionID)
	})
}

func TestIsGuestSession(t *testing.T) {
	assert.True(t, middleware.IsGuestSession("guest-"+uuid.NewString()))
	assert.False(t, middleware.IsGuestSession("user-7"))
	assert.False(t, middleware.IsGuestSession(""))
}
