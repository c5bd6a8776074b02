//go:build unit

package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront-gateway/internal/pkg/apierr"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		message string
		want    apierr.Kind
	}{
		{name: "structured code wins over status", status: http.StatusBadRequest, code: "OUT_OF_STOCK", message: "invalid", want: apierr.KindConflict},
		{name: "structured code is case insensitive", status: http.StatusOK, code: " forbidden ", want: apierr.KindPermission},
		{name: "unknown code falls through to status", status: http.StatusNotFound, code: "SOMETHING_NEW", want: apierr.KindNotFound},
		{name: "no status means network", status: 0, want: apierr.KindNetwork},
		{name: "401", status: http.StatusUnauthorized, want: apierr.KindPermission},
		{name: "403", status: http.StatusForbidden, want: apierr.KindPermission},
		{name: "409", status: http.StatusConflict, want: apierr.KindConflict},
		{name: "502", status: http.StatusBadGateway, want: apierr.KindServer},
		{name: "400 duplicate wording", status: http.StatusBadRequest, message: "Email already exists", want: apierr.KindConflict},
		{name: "400 vietnamese conflict wording", status: http.StatusBadRequest, message: "Tour đã hết hạn đặt chỗ", want: apierr.KindConflict},
		{name: "400 permission wording", status: http.StatusBadRequest, message: "You are not allowed to cancel", want: apierr.KindPermission},
		{name: "400 plain validation", status: http.StatusBadRequest, message: "Quantity must be positive", want: apierr.KindValidation},
		{name: "422 plain validation", status: http.StatusUnprocessableEntity, want: apierr.KindValidation},
		{name: "unexpected 3xx", status: http.StatusTeapot, message: "?", want: apierr.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apierr.Classify(tt.status, tt.code, tt.message))
		})
	}
}

func TestFromResponse(t *testing.T) {
	err := apierr.FromResponse(http.StatusBadRequest, apierr.Body{
		Title: "One or more validation errors occurred.",
		Errors: map[string][]string{
			"Email":               {"The Email field is required."},
			"request.PhoneNumber": {"Invalid phone number.", "Too short."},
			"$.quantity":          {"Must be at least 1."},
			"Empty":               {},
		},
	})

	assert.Equal(t, apierr.KindValidation, err.Kind)
	assert.Equal(t, "One or more validation errors occurred.", err.Message)

	want := map[string]string{
		"email":       "The Email field is required.",
		"phoneNumber": "Invalid phone number.",
		"quantity":    "Must be at least 1.",
	}
	if diff := cmp.Diff(want, err.Fields); diff != "" {
		t.Errorf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestKindOf(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("fetch stock: %w", apierr.Network(transport))

	assert.True(t, apierr.IsKind(wrapped, apierr.KindNetwork))
	assert.ErrorIs(t, wrapped, transport)
	assert.True(t, apierr.KindOf(wrapped).Retryable())

	assert.Equal(t, apierr.KindUnknown, apierr.KindOf(errors.New("plain")))
	assert.False(t, apierr.KindValidation.Retryable())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Bạn không có quyền thực hiện thao tác này.", apierr.UserMessage(apierr.KindPermission))
	assert.Equal(t, apierr.UserMessage(apierr.KindUnknown), apierr.UserMessage(apierr.Kind("NEW")))
}
