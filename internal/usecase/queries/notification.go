package queries

import (
	"storefront-gateway/internal/usecase/shared"
)

type NotificationQueries interface {
	Drain(userID string) []shared.Notification
}

type notificationQueriesImpl struct {
	feed shared.NotificationFeed
}

func NewNotificationQueries(feed shared.NotificationFeed) NotificationQueries {
	return &notificationQueriesImpl{feed: feed}
}

func (q *notificationQueriesImpl) Drain(userID string) []shared.Notification {
	out := q.feed.Drain(userID)
	if out == nil {
		return []shared.Notification{}
	}
	return out
}
