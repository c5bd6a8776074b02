// Package apierr classifies failures returned by the tourism backend so callers can
// branch on a stable Kind instead of on message prose.
package apierr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindPermission Kind = "PERMISSION"
	KindNotFound   Kind = "NOT_FOUND"
	KindNetwork    Kind = "NETWORK"
	KindServer     Kind = "SERVER"
	KindUnknown    Kind = "UNKNOWN"
)

// Retryable reports whether a later identical request may succeed.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// Body is the error envelope the backend returns on non-2xx responses.
type Body struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Title   string              `json:"title"`
	Errors  map[string][]string `json:"errors"`
}

type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Fields  map[string]string
	err     error // wrapped transport error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		b.WriteString(" (")
		b.WriteString(http.StatusText(e.Status))
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.err
}

// FromResponse builds a classified error from a non-2xx backend response.
func FromResponse(status int, body Body) *Error {
	msg := body.Message
	if msg == "" {
		msg = body.Title
	}
	return &Error{
		Kind:    Classify(status, body.Code, msg),
		Status:  status,
		Code:    body.Code,
		Message: msg,
		Fields:  MapFieldErrors(body.Errors),
	}
}

// Network wraps a transport failure (DNS, refused connection, timeout).
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, err: err}
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As returns the classified error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var codeKinds = map[string]Kind{
	"VALIDATION_ERROR":    KindValidation,
	"INVALID_ARGUMENT":    KindValidation,
	"INVALID_REQUEST":     KindValidation,
	"CONFLICT":            KindConflict,
	"DUPLICATE":           KindConflict,
	"ALREADY_EXISTS":      KindConflict,
	"OUT_OF_STOCK":        KindConflict,
	"BOOKING_WINDOW":      KindConflict,
	"UNAUTHORIZED":        KindPermission,
	"UNAUTHENTICATED":     KindPermission,
	"FORBIDDEN":           KindPermission,
	"NOT_FOUND":           KindNotFound,
	"INTERNAL_ERROR":      KindServer,
	"SERVICE_UNAVAILABLE": KindServer,
}

// Substring fallbacks for backends that do not send a code yet. English and
// Vietnamese wording are both in use on the backend.
var (
	conflictHints = []string{
		"already exists", "duplicate", "already booked", "overlap", "conflict",
		"out of stock", "not enough stock", "expired", "đã tồn tại", "trùng", "hết hàng", "hết hạn",
	}
	permissionHints = []string{
		"unauthorized", "forbidden", "not allowed", "permission", "access denied",
		"không có quyền", "chưa đăng nhập",
	}
	notFoundHints = []string{
		"not found", "does not exist", "không tìm thấy", "không tồn tại",
	}
)

// Classify resolves a Kind: structured code first, then status, then message text.
func Classify(status int, code, message string) Kind {
	if k, ok := codeKinds[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return k
	}

	switch {
	case status == 0:
		return KindNetwork
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= http.StatusInternalServerError:
		return KindServer
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, conflictHints):
		return KindConflict
	case containsAny(lower, permissionHints):
		return KindPermission
	case containsAny(lower, notFoundHints):
		return KindNotFound
	}

	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return KindValidation
	}
	return KindUnknown
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// MapFieldErrors turns backend field keys ("Email", "$.quantity", "request.PhoneNumber")
// into form field names ("email", "quantity", "phoneNumber"), keeping the first message.
func MapFieldErrors(raw map[string][]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(raw))
	for _, k := range keys {
		msgs := raw[k]
		if len(msgs) == 0 {
			continue
		}
		field := formFieldName(k)
		if field == "" {
			continue
		}
		if _, exists := out[field]; !exists {
			out[field] = msgs[0]
		}
	}
	return out
}

func formFieldName(key string) string {
	key = strings.TrimPrefix(key, "$")
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return strings.ToLower(key[:1]) + key[1:]
}

var userMessages = map[Kind]string{
	KindValidation: "Dữ liệu không hợp lệ, vui lòng kiểm tra lại.",
	KindConflict:   "Yêu cầu bị trùng hoặc không còn phù hợp, vui lòng thử lại.",
	KindPermission: "Bạn không có quyền thực hiện thao tác này.",
	KindNotFound:   "Không tìm thấy dữ liệu yêu cầu.",
	KindNetwork:    "Không thể kết nối tới máy chủ, vui lòng kiểm tra mạng.",
	KindServer:     "Máy chủ đang gặp sự cố, vui lòng thử lại sau.",
	KindUnknown:    "Đã có lỗi xảy ra, vui lòng thử lại.",
}

// UserMessage is the localized notification text for a Kind.
func UserMessage(kind Kind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}
