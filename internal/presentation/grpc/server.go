package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/opengrc/grc/pkg/auth"
	"github.com/opengrc/grc/pkg/tlsutil"
)

var healthMethods = []string{
	"/grpc.health.v1.Health/Check",
	"/grpc.health.v1.Health/Watch",
}

// ServerOptions configures the gRPC server. A nil Validator disables JWT
// authentication and the role policy; TLS is used when TLS.CertFile is set.
type ServerOptions struct {
	Validator  auth.TokenValidator
	TLS        tlsutil.ServerConfig
	Address    string
	Reflection bool
}

// Server wraps the gRPC server with vendor risk handlers.
type Server struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	address      string
	logger       *slog.Logger
}

// NewServer creates a new gRPC server for the risk service.
func NewServer(handler *VendorRiskHandler, opts ServerOptions, logger *slog.Logger) (*Server, error) {
	var serverOpts []grpc.ServerOption

	if opts.Validator != nil {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(
			auth.UnaryAuthInterceptor(opts.Validator, healthMethods),
			auth.UnaryRoleInterceptor(RolePolicy),
		))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	if opts.TLS.CertFile != "" {
		creds, err := tlsutil.ServerCredentials(opts.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled",
			slog.String("cert", opts.TLS.CertFile),
			slog.Bool("mtls", opts.TLS.ClientCAFile != ""),
		)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	RegisterVendorRiskServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer:   grpcServer,
		healthServer: healthServer,
		address:      opts.Address,
		logger:       logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))

	s.healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if err := s.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
}
