package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opengrc/grc/pkg/events"
	pkgkafka "github.com/opengrc/grc/pkg/kafka"
)

// Producer is the subset of pkgkafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements events.EventPublisher using Kafka. Entries are keyed
// by aggregate ID so events of one survey or vendor stay ordered.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
	topic    string
}

// NewPublisher creates a new Kafka event publisher.
func NewPublisher(producer Producer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends outbox entries to Kafka.
func (p *Publisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, entry := range entries {
		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", entry.EventType),
			slog.String("event_id", entry.ID.String()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(entry.Payload)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(entry.AggregateID.String()),
			Value: entry.Payload,
			Headers: map[string]string{
				"event_id":       entry.ID.String(),
				"event_type":     entry.EventType,
				"aggregate_type": entry.AggregateType,
			},
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}

	return nil
}
