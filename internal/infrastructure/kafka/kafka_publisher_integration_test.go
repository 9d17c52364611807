//go:build integration

package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengrc/grc/pkg/events"
	pkgkafka "github.com/opengrc/grc/pkg/kafka"
	"github.com/opengrc/grc/pkg/testutil"
)

func TestPublisher_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { kc.Cleanup(t) })

	const topic = "risk.events"
	kc.CreateTopics(t, topic)

	cfg := pkgkafka.Config{
		Brokers:       kc.Brokers,
		ClientID:      "risk-service-test",
		ConsumerGroup: "risk-service-it",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	entry := events.OutboxEntry{
		ID:            uuid.New(),
		AggregateID:   testutil.TestSurveyID1,
		AggregateType: "Survey",
		EventType:     "risk.survey.scored",
		Payload:       []byte(`{"risk_score":48}`),
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, NewPublisher(producer, topic, logger).Publish(ctx, entry))

	received := make(chan pkgkafka.Message, 1)
	consumer, err := pkgkafka.NewConsumer(cfg, topic, func(_ context.Context, msg pkgkafka.Message) error {
		received <- msg
		return nil
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Start(consumeCtx) }()

	select {
	case msg := <-received:
		assert.Equal(t, testutil.TestSurveyID1.String(), string(msg.Key))
		assert.JSONEq(t, `{"risk_score":48}`, string(msg.Value))
		assert.Equal(t, entry.ID.String(), msg.Headers["event_id"])
		assert.Equal(t, "risk.survey.scored", msg.Headers["event_type"])
		assert.Equal(t, "Survey", msg.Headers["aggregate_type"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published event")
	}
}
