package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"localhost:9092", "localhost:9093"},
		ConsumerGroup: "risk-service",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.cfg.Brokers)
	assert.Nil(t, p.transport)
	assert.Empty(t, p.writers)
}

func TestNewProducerWithSASL(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:      []string{"kafka:9092"},
		ClientID:     "riskd",
		TLS:          true,
		SASLEnabled:  true,
		SASLUsername: "svc",
		SASLPassword: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, p.transport)

	assert.Equal(t, "riskd", p.transport.ClientID)
	assert.NotNil(t, p.transport.TLS)
	assert.Equal(t, plain.Mechanism{Username: "svc", Password: "secret"}, p.transport.SASL)
}

func TestNewProducerRejectsUnknownMechanism(t *testing.T) {
	_, err := NewProducer(Config{
		Brokers:       []string{"kafka:9092"},
		SASLEnabled:   true,
		SASLMechanism: "GSSAPI",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GSSAPI")
}

func TestResolveSASL(t *testing.T) {
	tests := []struct {
		name      string
		mechanism string
		wantName  string
	}{
		{name: "default plain", mechanism: "", wantName: "PLAIN"},
		{name: "plain", mechanism: "PLAIN", wantName: "PLAIN"},
		{name: "scram 256", mechanism: "SCRAM-SHA-256", wantName: "SCRAM-SHA-256"},
		{name: "scram 512", mechanism: "SCRAM-SHA-512", wantName: "SCRAM-SHA-512"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := resolveSASL(Config{
				SASLEnabled:   true,
				SASLMechanism: tt.mechanism,
				SASLUsername:  "user",
				SASLPassword:  "pass",
			})
			require.NoError(t, err)
			require.NotNil(t, m)
			assert.Equal(t, tt.wantName, m.Name())
		})
	}
}

func TestResolveSASLDisabled(t *testing.T) {
	m, err := resolveSASL(Config{SASLMechanism: "SCRAM-SHA-512"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("risk.events")
	w2 := p.getOrCreateWriter("risk.events")
	w3 := p.getOrCreateWriter("survey.answers")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Len(t, p.writers, 2)
	assert.Equal(t, 10*time.Millisecond, w1.BatchTimeout)
	assert.Equal(t, kafkago.RequireAll, w1.RequiredAcks)
}

func TestGetOrCreateWriterUsesConfiguredBatchTimeout(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}, BatchTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, p.getOrCreateWriter("risk.events").BatchTimeout)
}

func TestToKafkaMessages(t *testing.T) {
	out := toKafkaMessages([]Message{{
		Key:     []byte("survey-1"),
		Value:   []byte(`{"score":40}`),
		Headers: map[string]string{"event-type": "risk.survey.scored"},
	}})

	require.Len(t, out, 1)
	assert.Equal(t, []byte("survey-1"), out[0].Key)
	assert.Equal(t, []byte(`{"score":40}`), out[0].Value)
	require.Len(t, out[0].Headers, 1)
	assert.Equal(t, "event-type", out[0].Headers[0].Key)
	assert.Equal(t, []byte("risk.survey.scored"), out[0].Headers[0].Value)
}

func TestFromKafkaMessage(t *testing.T) {
	msg := fromKafkaMessage(kafkago.Message{
		Topic:     "survey.answers",
		Partition: 2,
		Offset:    17,
		Key:       []byte("survey-1"),
		Value:     []byte(`{}`),
		Headers:   []kafkago.Header{{Key: "event-type", Value: []byte("survey.answer.updated")}},
	})

	assert.Equal(t, "survey.answers", msg.Topic)
	assert.Equal(t, 2, msg.Partition)
	assert.Equal(t, int64(17), msg.Offset)
	assert.Equal(t, "survey.answer.updated", msg.Headers["event-type"])
}

func TestProducerClose(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}
