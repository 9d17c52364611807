package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/pkg/auth"
	"github.com/opengrc/grc/pkg/tlsutil"
)

// startBufconnServer serves the handler on an in-memory listener and returns
// a client connection that speaks the JSON codec.
func startBufconnServer(t *testing.T, env *testEnv, validator auth.TokenValidator) *grpclib.ClientConn {
	t.Helper()
	return startServer(t, env, ServerOptions{Validator: validator}, insecure.NewCredentials())
}

func startServer(t *testing.T, env *testEnv, opts ServerOptions, clientCreds credentials.TransportCredentials) *grpclib.ClientConn {
	t.Helper()

	srv, err := NewServer(env.handler, opts, testLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(clientCreds),
		grpclib.WithDefaultCallOptions(grpclib.CallContentSubtype(JSONCodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:     "risk-service-test-secret",
		Issuer:     "grc-test",
		Expiration: 5 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func withToken(t *testing.T, svc *auth.JWTService, userID uuid.UUID, roles ...string) context.Context {
	t.Helper()
	token, err := svc.GenerateToken(userID, "user@example.com", roles)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServerEndToEnd(t *testing.T) {
	env := newTestEnv()
	jwtSvc := newJWTService(t)
	conn := startBufconnServer(t, env, jwtSvc)
	vendorID, surveyID, _ := env.addVendorSurvey(valueobject.QuestionTypeBoolean)

	t.Run("health check does not require a token", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
			&healthpb.HealthCheckRequest{Service: ServiceName}, grpclib.CallContentSubtype("proto"))
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})

	t.Run("missing token returns Unauthenticated", func(t *testing.T) {
		var resp RiskThresholdsResponse
		err := conn.Invoke(context.Background(), MethodGetRiskThresholds, &GetRiskThresholdsRequest{}, &resp)
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("auditor cannot recalculate", func(t *testing.T) {
		ctx := withToken(t, jwtSvc, uuid.New(), auth.RoleAuditor)
		var resp CalculateSurveyScoreResponse
		err := conn.Invoke(ctx, MethodCalculateSurveyScore, &CalculateSurveyScoreRequest{SurveyID: surveyID.String()}, &resp)
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("analyst recalculates and auditor reads the vendor", func(t *testing.T) {
		ctx := withToken(t, jwtSvc, uuid.New(), auth.RoleRiskAnalyst)
		var scored CalculateSurveyScoreResponse
		err := conn.Invoke(ctx, MethodCalculateSurveyScore, &CalculateSurveyScoreRequest{SurveyID: surveyID.String()}, &scored)
		require.NoError(t, err)
		require.NotNil(t, scored.Survey)
		assert.Equal(t, int32(100), scored.Survey.RiskScore)

		auditorCtx := withToken(t, jwtSvc, uuid.New(), auth.RoleAuditor)
		var vendor GetVendorRiskResponse
		err = conn.Invoke(auditorCtx, MethodGetVendorRisk, &GetVendorRiskRequest{VendorID: vendorID.String()}, &vendor)
		require.NoError(t, err)
		assert.Equal(t, "CRITICAL", vendor.RiskRating)
	})

	t.Run("only admins update thresholds", func(t *testing.T) {
		req := &UpdateRiskThresholdsRequest{Thresholds: &ThresholdsMsg{VeryLow: 15, Low: 35, Medium: 55, High: 75}}

		var resp RiskThresholdsResponse
		err := conn.Invoke(withToken(t, jwtSvc, uuid.New(), auth.RoleRiskAnalyst), MethodUpdateRiskThresholds, req, &resp)
		requireGRPCCode(t, err, codes.PermissionDenied)

		err = conn.Invoke(withToken(t, jwtSvc, uuid.New(), auth.RoleAdmin), MethodUpdateRiskThresholds, req, &resp)
		require.NoError(t, err)
		assert.True(t, resp.Configured)
		assert.Equal(t, int32(15), resp.Thresholds.VeryLow)
	})
}

func TestServerWithoutAuth(t *testing.T) {
	env := newTestEnv()
	conn := startBufconnServer(t, env, nil)

	var resp RecommendRiskRatingResponse
	err := conn.Invoke(context.Background(), MethodRecommendRiskRating, &RecommendRiskRatingRequest{Score: int32Of(45)}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "MEDIUM", resp.RiskRating)
}

func TestServerWithTLS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tlsutil.GenerateSelfSignedCert([]string{"bufnet"}, dir))

	clientCreds, err := tlsutil.ClientCredentials(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)

	env := newTestEnv()
	conn := startServer(t, env, ServerOptions{
		TLS: tlsutil.ServerConfig{
			CertFile: filepath.Join(dir, "server.pem"),
			KeyFile:  filepath.Join(dir, "server-key.pem"),
		},
	}, clientCreds)

	var resp RiskThresholdsResponse
	err = conn.Invoke(context.Background(), MethodGetRiskThresholds, &GetRiskThresholdsRequest{}, &resp)
	require.NoError(t, err)
	assert.Equal(t, int32(80), resp.Thresholds.High)
}

func TestNewServerRejectsMissingCertificate(t *testing.T) {
	env := newTestEnv()
	_, err := NewServer(env.handler, ServerOptions{
		TLS: tlsutil.ServerConfig{CertFile: filepath.Join(t.TempDir(), "missing.pem"), KeyFile: "missing-key.pem"},
	}, testLogger())
	require.Error(t, err)
}
