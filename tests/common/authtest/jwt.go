//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

// JWTHelper signs tokens the way the tourism backend does, so requests can be
// made as a signed-in customer.
type JWTHelper struct {
	service *jwt.Service
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{service: jwt.NewService(cfg.Secret)}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := h.service.GenerateToken(userID, "customer", time.Hour)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := h.service.GenerateToken(userID, "customer", -time.Minute)
	require.NoError(t, err)
	return token
}
