package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/pkg/kafka"
	pgutil "github.com/opengrc/grc/pkg/postgres"
)

// Config holds all configuration for the risk service.
type Config struct {
	// gRPC server port
	GRPCPort int
	// Register the gRPC reflection service
	GRPCReflection bool
	// HTTP metrics/health port
	HTTPPort int
	// Service name for observability
	ServiceName string
	Environment string

	Log       LogConfig
	Database  pgutil.Config
	Kafka     KafkaConfig
	Redis     RedisConfig
	Auth      AuthConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
	Risk      RiskConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// KafkaConfig holds Kafka connection settings and topic names.
type KafkaConfig struct {
	Client       kafka.Config
	AnswersTopic string
	EventsTopic  string
	// ConsumerEnabled turns the answer-event consumer on.
	ConsumerEnabled bool
}

// RedisConfig holds the thresholds cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AuthConfig holds JWT validation settings. Auth is disabled when neither
// a secret nor a public key file is configured.
type AuthConfig struct {
	JWTSecret        string
	JWTPublicKeyFile string
	Issuer           string
}

// Enabled reports whether token validation is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != "" || c.JWTPublicKeyFile != ""
}

// TLSConfig holds gRPC server TLS files. TLS is off when CertFile is empty.
type TLSConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

// TelemetryConfig holds tracing exporter settings. An empty endpoint disables tracing.
type TelemetryConfig struct {
	OTLPEndpoint string
	Insecure     bool
}

// RiskConfig holds scoring settings.
type RiskConfig struct {
	DefaultThresholds valueobject.RiskThresholds
	AutoRollup        bool
	OutboxInterval    time.Duration
	OutboxBatchSize   int
	MigrationsSource  string
}

// Load reads configuration from environment variables with defaults. Files
// are loaded with godotenv first; variables already set are not overridden
// and missing files are ignored.
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	return Config{
		GRPCPort:    getEnvInt("GRPC_PORT", 8090),
		HTTPPort:    getEnvInt("HTTP_PORT", 9090),

		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		ServiceName: getEnv("SERVICE_NAME", "risk-service"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: pgutil.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "grc"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "grc_risk"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			ApplicationName: getEnv("SERVICE_NAME", "risk-service"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 1)),
		},
		Kafka: KafkaConfig{
			Client: kafka.Config{
				Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
				ClientID:      getEnv("KAFKA_CLIENT_ID", "risk-service"),
				ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "risk-service"),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			AnswersTopic:    getEnv("KAFKA_ANSWERS_TOPIC", "survey.answers"),
			EventsTopic:     getEnv("KAFKA_EVENTS_TOPIC", "risk.events"),
			ConsumerEnabled: getEnvBool("KAFKA_CONSUMER_ENABLED", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_THRESHOLDS_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			JWTPublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:           getEnv("JWT_ISSUER", "opengrc"),
		},
		TLS: TLSConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:     getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Risk: RiskConfig{
			DefaultThresholds: valueobject.ReconstructRiskThresholds(
				getEnvInt("RISK_THRESHOLD_VERY_LOW", 20),
				getEnvInt("RISK_THRESHOLD_LOW", 40),
				getEnvInt("RISK_THRESHOLD_MEDIUM", 60),
				getEnvInt("RISK_THRESHOLD_HIGH", 80),
			),
			AutoRollup:       getEnvBool("RISK_AUTO_ROLLUP", true),
			OutboxInterval:   getEnvDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			OutboxBatchSize:  getEnvInt("OUTBOX_BATCH_SIZE", 100),
			MigrationsSource: getEnv("MIGRATIONS_SOURCE", "file://internal/infrastructure/postgres/migrations"),
		},
	}
}

// Validate checks required configuration values.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Password == "" && c.Environment != "development" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if err := c.Risk.DefaultThresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default thresholds: %w", err))
	}
	if len(c.Kafka.Client.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if c.TLS.CertFile != "" && c.TLS.KeyFile == "" {
		errs = append(errs, errors.New("TLS_KEY_FILE is required when TLS_CERT_FILE is set"))
	}
	if c.Risk.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// GRPCAddress returns the full gRPC listen address.
func (c Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
