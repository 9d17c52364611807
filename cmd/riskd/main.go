package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opengrc/grc/internal/application/usecase"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/infrastructure/cache"
	"github.com/opengrc/grc/internal/infrastructure/config"
	riskkafka "github.com/opengrc/grc/internal/infrastructure/kafka"
	"github.com/opengrc/grc/internal/infrastructure/messaging"
	"github.com/opengrc/grc/internal/infrastructure/postgres"
	"github.com/opengrc/grc/internal/infrastructure/telemetry"
	grpcpresentation "github.com/opengrc/grc/internal/presentation/grpc"
	"github.com/opengrc/grc/internal/presentation/rest"
	"github.com/opengrc/grc/pkg/auth"
	"github.com/opengrc/grc/pkg/kafka"
	"github.com/opengrc/grc/pkg/observability"
	pgutil "github.com/opengrc/grc/pkg/postgres"
	"github.com/opengrc/grc/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("risk-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load(".env")

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting risk-service",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
	)

	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    cfg.Telemetry.Insecure,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	scoringMetrics, err := telemetry.NewScoringMetrics(meterProvider.Meter("github.com/opengrc/grc/risk"))
	if err != nil {
		return fmt.Errorf("failed to create scoring metrics: %w", err)
	}

	// Database.
	version, err := pgutil.RunMigrations(cfg.Database.DSN(), cfg.Risk.MigrationsSource)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrated", "version", version)

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pgutil.NewPool(dbCtx, cfg.Database)
	dbCancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	readiness := map[string]rest.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) },
	}

	// Repositories.
	surveyRepo := postgres.NewSurveyRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	answerRepo := postgres.NewAnswerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	var thresholdsRepo port.ThresholdsRepository = postgres.NewThresholdsRepository(pool)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		thresholdsRepo = cache.NewThresholdsCache(thresholdsRepo, redisClient, cfg.Redis.TTL, logger)
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.Info("thresholds cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	// Use cases.
	thresholds := usecase.NewThresholdsSource(thresholdsRepo, cfg.Risk.DefaultThresholds)
	aggregator := service.NewSurveyAggregator(service.NewAnswerScorer())
	rollupVendorScore := usecase.NewRollupVendorScore(vendorRepo, surveyRepo, thresholds, scoringMetrics)

	var autoRollup *usecase.RollupVendorScore
	if cfg.Risk.AutoRollup {
		autoRollup = rollupVendorScore
	}
	calculateSurveyScore := usecase.NewCalculateSurveyScore(surveyRepo, aggregator, thresholds, scoringMetrics, autoRollup, logger)

	useCases := grpcpresentation.UseCases{
		CalculateSurveyScore: calculateSurveyScore,
		GetScoreBreakdown:    usecase.NewGetScoreBreakdown(surveyRepo, aggregator),
		RecommendRiskRating:  usecase.NewRecommendRiskRating(thresholds),
		RollupVendorScore:    rollupVendorScore,
		GetVendorRisk:        usecase.NewGetVendorRisk(vendorRepo),
		ReviewAnswer:         usecase.NewReviewAnswer(answerRepo, surveyRepo, calculateSurveyScore),
		GetRiskThresholds:    usecase.NewGetRiskThresholds(thresholds),
		UpdateRiskThresholds: usecase.NewUpdateRiskThresholds(thresholdsRepo),
	}

	// Messaging.
	producer, err := kafka.NewProducer(cfg.Kafka.Client)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	defer producer.Close()

	relay := messaging.NewOutboxRelay(
		outboxRepo,
		riskkafka.NewPublisher(producer, cfg.Kafka.EventsTopic, logger),
		cfg.Risk.OutboxInterval,
		cfg.Risk.OutboxBatchSize,
		logger,
	)

	errCh := make(chan error, 3)
	relayDone := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(relayDone)
	}()

	if cfg.Kafka.ConsumerEnabled {
		answerHandler := messaging.NewAnswerEventHandler(calculateSurveyScore, messaging.DefaultRetryConfig(), logger)
		consumer, err := kafka.NewConsumer(cfg.Kafka.Client, cfg.Kafka.AnswersTopic, answerHandler.Handle, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka consumer: %w", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("answer consumer error: %w", err)
			}
		}()
	}

	// gRPC server.
	validator, err := newTokenValidator(cfg.Auth)
	if err != nil {
		return err
	}
	grpcServer, err := grpcpresentation.NewServer(
		grpcpresentation.NewVendorRiskHandler(useCases, logger),
		grpcpresentation.ServerOptions{
			Address:    cfg.GRPCAddress(),
			Validator:  validator,
			Reflection: cfg.GRPCReflection,
			TLS: tlsutil.ServerConfig{
				CertFile:     cfg.TLS.CertFile,
				KeyFile:      cfg.TLS.KeyFile,
				ClientCAFile: cfg.TLS.ClientCAFile,
			},
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	// HTTP server (health checks and metrics).
	httpMux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, readiness, logger).RegisterRoutes(httpMux, metricsHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      httpMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
		cancel()
	}

	logger.Info("shutting down risk-service")
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Publish whatever the last requests wrote before the producer closes.
	<-relayDone
	if n, err := relay.Drain(shutdownCtx); err != nil {
		logger.Error("failed to drain outbox", "error", err, "published", n)
	} else if n > 0 {
		logger.Info("outbox drained", "published", n)
	}

	logger.Info("risk-service stopped")
	return runErr
}

// newTokenValidator returns nil when authentication is not configured.
func newTokenValidator(cfg config.AuthConfig) (auth.TokenValidator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	jwtCfg := auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.Issuer}
	if cfg.JWTPublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load JWT public key: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	return svc, nil
}
