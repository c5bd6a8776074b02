package httperr

import (
	"storefront-gateway/internal/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// BackendDetail tells the UI which class of backend failure occurred and, for
// validation failures, which form fields were rejected.
type BackendDetail struct {
	Kind   apierr.Kind       `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// NewBackendDetail extracts the classification of a backend error, if any.
func NewBackendDetail(err error) *BackendDetail {
	d := &BackendDetail{Kind: apierr.KindOf(err)}
	if e, ok := apierr.As(err); ok {
		d.Fields = e.Fields
	}
	return d
}
