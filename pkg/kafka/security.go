package kafka

import (
	"crypto/tls"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// resolveSASL returns the SASL mechanism selected by cfg, or nil when SASL is disabled.
func resolveSASL(cfg Config) (sasl.Mechanism, error) {
	if !cfg.SASLEnabled {
		return nil, nil
	}

	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		m, err := scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
		if err != nil {
			return nil, fmt.Errorf("kafka: scram-sha-256: %w", err)
		}
		return m, nil
	case "SCRAM-SHA-512":
		m, err := scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
		if err != nil {
			return nil, fmt.Errorf("kafka: scram-sha-512: %w", err)
		}
		return m, nil
	case "PLAIN", "":
		return plain.Mechanism{
			Username: cfg.SASLUsername,
			Password: cfg.SASLPassword,
		}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

func tlsConfig(cfg Config) *tls.Config {
	if !cfg.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// newDialer builds the reader dialer. It returns nil when neither TLS nor SASL is configured.
func newDialer(cfg Config) (*kafkago.Dialer, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}
	mechanism, err := resolveSASL(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{
		ClientID:      cfg.ClientID,
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           tlsConfig(cfg),
		SASLMechanism: mechanism,
	}, nil
}

// newTransport builds the writer transport. It returns nil when neither TLS nor SASL is configured.
func newTransport(cfg Config) (*kafkago.Transport, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}
	mechanism, err := resolveSASL(cfg)
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{
		ClientID: cfg.ClientID,
		TLS:      tlsConfig(cfg),
		SASL:     mechanism,
	}, nil
}
