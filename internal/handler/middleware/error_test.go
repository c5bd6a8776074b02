//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-gateway/internal/handler/httperr"
	"storefront-gateway/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "public error is rendered from its meta",
			handler: func(c *gin.Context) {
				resp := httperr.Response{Status: http.StatusConflict}
				resp.Error.Message = "Requested quantity exceeds available stock"
				_ = c.Error(gin.Error{Err: errors.New("conflict"), Type: gin.ErrorTypePublic, Meta: resp})
			},
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":{"message":"Requested quantity exceeds available stock"}}`,
		},
		{
			name:       "already written response is left alone",
			handler:    func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) },
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true}`,
		},
		{
			name:       "status without body",
			handler:    func(c *gin.Context) { c.Status(http.StatusNoContent) },
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "private error falls back to 500",
			handler:    func(c *gin.Context) { _ = c.Error(errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":{"message":"Internal server error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.GET("/x", tt.handler)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestCustomRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CustomRecovery())
	r.GET("/x", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"Internal server error"}}`, rec.Body.String())
}
