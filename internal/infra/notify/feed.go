// Package notify delivers transient user notifications: an in-process feed the UI
// drains, and an optional Kafka topic for other consumers.
package notify

import (
	"context"
	"sync"
	"time"

	"storefront-gateway/internal/usecase/shared"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Feed buffers the latest notifications per session until the UI drains them.
// A session's queue is dropped once nothing was added to it for ttl.
type Feed struct {
	size int

	mu       sync.Mutex
	sessions *expirable.LRU[string, []shared.Notification]
}

func NewFeed(size int, ttl time.Duration) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size, sessions: expirable.NewLRU[string, []shared.Notification](0, nil, ttl)}
}

func (f *Feed) Notify(_ context.Context, n shared.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, _ := f.sessions.Get(n.SessionID)
	q = append(q, n)
	if len(q) > f.size {
		q = q[len(q)-f.size:]
	}
	f.sessions.Add(n.SessionID, q)
	return nil
}

// Drain returns the pending notifications of a session, oldest first, and forgets them.
func (f *Feed) Drain(sessionID string) []shared.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, _ := f.sessions.Get(sessionID)
	f.sessions.Remove(sessionID)
	return q
}
