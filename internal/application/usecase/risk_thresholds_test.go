package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/application/usecase"
	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/pkg/testutil"
)

func TestGetRiskThresholds_Execute(t *testing.T) {
	t.Run("falls back to defaults when none are stored", func(t *testing.T) {
		source := usecase.NewThresholdsSource(&mockThresholdsRepository{}, valueobject.DefaultRiskThresholds())

		resp, err := usecase.NewGetRiskThresholds(source).Execute(context.Background())

		require.NoError(t, err)
		assert.False(t, resp.Configured)
		assert.Equal(t, dto.Thresholds{VeryLow: 20, Low: 40, Medium: 60, High: 80}, resp.Thresholds)
	})

	t.Run("returns stored thresholds", func(t *testing.T) {
		stored := valueobject.ReconstructRiskThresholds(10, 30, 50, 70)
		source := usecase.NewThresholdsSource(&mockThresholdsRepository{stored: &stored}, valueobject.DefaultRiskThresholds())

		resp, err := usecase.NewGetRiskThresholds(source).Execute(context.Background())

		require.NoError(t, err)
		assert.True(t, resp.Configured)
		assert.Equal(t, dto.Thresholds{VeryLow: 10, Low: 30, Medium: 50, High: 70}, resp.Thresholds)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := &mockThresholdsRepository{getErr: errors.New("db down")}
		source := usecase.NewThresholdsSource(repo, valueobject.DefaultRiskThresholds())

		_, err := usecase.NewGetRiskThresholds(source).Execute(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestUpdateRiskThresholds_Execute(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.UpdateRiskThresholdsRequest
		wantErr error
	}{
		{
			name: "stores valid thresholds",
			req:  dto.UpdateRiskThresholdsRequest{Thresholds: dto.Thresholds{VeryLow: 15, Low: 35, Medium: 55, High: 75}, UpdatedBy: uuid.New()},
		},
		{
			name:    "rejects descending boundaries",
			req:     dto.UpdateRiskThresholdsRequest{Thresholds: dto.Thresholds{VeryLow: 40, Low: 20, Medium: 60, High: 80}, UpdatedBy: uuid.New()},
			wantErr: valueobject.ErrInvalidThresholds,
		},
		{
			name:    "rejects boundaries above 100",
			req:     dto.UpdateRiskThresholdsRequest{Thresholds: dto.Thresholds{VeryLow: 20, Low: 40, Medium: 60, High: 101}, UpdatedBy: uuid.New()},
			wantErr: valueobject.ErrInvalidThresholds,
		},
		{
			name:    "requires the updating user",
			req:     dto.UpdateRiskThresholdsRequest{Thresholds: dto.Thresholds{VeryLow: 20, Low: 40, Medium: 60, High: 80}},
			wantErr: usecase.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockThresholdsRepository{}

			resp, err := usecase.NewUpdateRiskThresholds(repo).Execute(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, repo.stored)
				return
			}
			require.NoError(t, err)
			assert.True(t, resp.Configured)
			assert.Equal(t, tt.req.Thresholds, resp.Thresholds)
			require.NotNil(t, repo.stored)
			assert.Equal(t, tt.req.UpdatedBy, repo.updatedBy)
		})
	}
}

func TestRecommendRiskRating_Execute(t *testing.T) {
	tests := []struct {
		name    string
		score   *int
		want    string
		wantErr bool
	}{
		{name: "unassessed vendor", score: nil, want: "VERY_LOW"},
		{name: "zero", score: testutil.IntPtr(0), want: "VERY_LOW"},
		{name: "very low boundary is inclusive", score: testutil.IntPtr(20), want: "VERY_LOW"},
		{name: "just above very low", score: testutil.IntPtr(21), want: "LOW"},
		{name: "medium boundary", score: testutil.IntPtr(60), want: "MEDIUM"},
		{name: "high boundary", score: testutil.IntPtr(80), want: "HIGH"},
		{name: "critical", score: testutil.IntPtr(81), want: "CRITICAL"},
		{name: "out of range", score: testutil.IntPtr(101), wantErr: true},
		{name: "negative", score: testutil.IntPtr(-1), wantErr: true},
	}

	source := usecase.NewThresholdsSource(&mockThresholdsRepository{}, valueobject.DefaultRiskThresholds())
	uc := usecase.NewRecommendRiskRating(source)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := uc.Execute(context.Background(), dto.RecommendRiskRatingRequest{Score: tt.score})

			if tt.wantErr {
				assert.ErrorIs(t, err, usecase.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.RiskRating)
			assert.Equal(t, dto.Thresholds{VeryLow: 20, Low: 40, Medium: 60, High: 80}, resp.Thresholds)
		})
	}
}
