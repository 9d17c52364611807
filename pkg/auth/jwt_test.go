package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "grc-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	tokenString, err := svc.GenerateToken(userID, "analyst@example.com", []string{RoleRiskAnalyst, RoleAuditor})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "analyst@example.com", claims.Email)
	assert.Equal(t, []string{RoleRiskAnalyst, RoleAuditor}, claims.Roles)
	assert.Equal(t, "grc-test", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestGenerateAndValidateToken_RSA(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Issuer: "grc-test", Expiration: time.Minute})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM), Issuer: "grc-test"})
	require.NoError(t, err)

	token, err := issuer.GenerateToken(uuid.New(), "", []string{RoleAdmin})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleAdmin))

	_, err = validator.GenerateToken(uuid.New(), "", nil)
	assert.ErrorIs(t, err, ErrValidationOnly)
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Issuer: "grc-test"})
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "grc-test",
		Expiration: -1 * time.Hour,
	})
	require.NoError(t, err)

	tokenString, err := svc.GenerateToken(uuid.New(), "", []string{RoleVendorManager})
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	svc1, err := NewJWTService(JWTConfig{Secret: "secret-one", Issuer: "grc-test", Expiration: 15 * time.Minute})
	require.NoError(t, err)
	svc2, err := NewJWTService(JWTConfig{Secret: "secret-two", Issuer: "grc-test", Expiration: 15 * time.Minute})
	require.NoError(t, err)

	tokenString, err := svc1.GenerateToken(uuid.New(), "", []string{RoleVendorManager})
	require.NoError(t, err)

	_, err = svc2.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	other, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else", Expiration: time.Minute})
	require.NoError(t, err)

	tokenString, err := other.GenerateToken(uuid.New(), "", nil)
	require.NoError(t, err)

	_, err = newTestJWTService(t).ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	claims := Claims{Roles: []string{RoleAdmin, RoleAuditor}}

	assert.True(t, claims.HasRole(RoleAdmin))
	assert.True(t, claims.HasRole(RoleAuditor))
	assert.False(t, claims.HasRole(RoleVendorManager))
	assert.True(t, claims.HasAnyRole(RoleVendorManager, RoleAuditor))
	assert.False(t, claims.HasAnyRole(RoleRiskAnalyst, "nonexistent"))
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	expected := &Claims{UserID: uuid.New(), Roles: []string{RoleRiskAnalyst}}
	got, ok := ClaimsFromContext(ContextWithClaims(context.Background(), expected))
	require.True(t, ok)
	assert.Equal(t, expected.UserID, got.UserID)
	assert.Equal(t, []string{RoleRiskAnalyst}, got.Roles)
}

func okHandler(ctx context.Context, _ any) (any, error) {
	claims, _ := ClaimsFromContext(ctx)
	return claims, nil
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "", []string{RoleRiskAnalyst})
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		ctx      context.Context
		wantCode codes.Code
	}{
		{
			name:     "skipped method",
			method:   "/grpc.health.v1.Health/Check",
			ctx:      context.Background(),
			wantCode: codes.OK,
		},
		{
			name:     "missing metadata",
			method:   "/grc.risk.v1.VendorRiskService/CalculateSurveyScore",
			ctx:      context.Background(),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "missing header",
			method:   "/grc.risk.v1.VendorRiskService/CalculateSurveyScore",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-other", "1")),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "invalid token",
			method:   "/grc.risk.v1.VendorRiskService/CalculateSurveyScore",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope")),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "valid bearer token",
			method:   "/grc.risk.v1.VendorRiskService/CalculateSurveyScore",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token)),
			wantCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, okHandler)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestUnaryAuthInterceptor_AttachesClaims(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "", []string{RoleRiskAnalyst})
	require.NoError(t, err)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", token))
	resp, err := UnaryAuthInterceptor(svc, nil)(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, okHandler)
	require.NoError(t, err)

	claims, ok := resp.(*Claims)
	require.True(t, ok)
	assert.Equal(t, userID, claims.UserID)
}

func TestUnaryRoleInterceptor(t *testing.T) {
	const method = "/grc.risk.v1.VendorRiskService/UpdateRiskThresholds"
	interceptor := UnaryRoleInterceptor(map[string][]string{method: {RoleAdmin}})

	tests := []struct {
		name     string
		method   string
		claims   *Claims
		wantCode codes.Code
	}{
		{name: "unguarded method", method: "/x/Y", wantCode: codes.OK},
		{name: "no claims", method: method, wantCode: codes.Unauthenticated},
		{name: "missing role", method: method, claims: &Claims{Roles: []string{RoleAuditor}}, wantCode: codes.PermissionDenied},
		{name: "has role", method: method, claims: &Claims{Roles: []string{RoleAdmin}}, wantCode: codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.claims != nil {
				ctx = ContextWithClaims(ctx, tt.claims)
			}
			_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, okHandler)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}
