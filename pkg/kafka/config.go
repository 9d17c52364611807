package kafka

import "time"

// Config holds Kafka connection parameters.
type Config struct {
	ClientID      string
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// BatchTimeout bounds how long the producer waits to fill a batch.
	BatchTimeout time.Duration

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

func (c Config) batchTimeout() time.Duration {
	if c.BatchTimeout <= 0 {
		return 10 * time.Millisecond
	}
	return c.BatchTimeout
}
