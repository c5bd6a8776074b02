package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront-gateway/internal/infra"
	"storefront-gateway/internal/pkg/config"
	"storefront-gateway/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher mirrors notifications onto a topic keyed by session id.
type KafkaPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewKafkaWriter(cfg config.NotifyConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

type notificationEvent struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId"`
	Level      string `json:"level"`
	Message    string `json:"message"`
	DurationMs int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
}

func (p *KafkaPublisher) Notify(ctx context.Context, n shared.Notification) error {
	payload, err := json.Marshal(notificationEvent{
		ID:         n.ID.String(),
		SessionID:  n.SessionID,
		Level:      string(n.Level),
		Message:    n.Message,
		DurationMs: n.Duration.Milliseconds(),
		CreatedAt:  n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return infra.WrapRepoErr(p.logger, infra.KindPublishFailure, "marshal notification", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "level", Value: []byte(n.Level)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return infra.WrapRepoErr(p.logger, infra.KindPublishFailure, "publish notification", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
