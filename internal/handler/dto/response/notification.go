package response

import (
	"time"

	"storefront-gateway/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID         uuid.UUID `json:"id"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromNotifications(ns []shared.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationResponse{
			ID:         n.ID,
			Level:      string(n.Level),
			Message:    n.Message,
			DurationMs: n.Duration.Milliseconds(),
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}
