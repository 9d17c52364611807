package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// ThresholdsSource resolves the thresholds in effect: the stored settings,
// or the configured defaults when none are stored.
type ThresholdsSource struct {
	repo     port.ThresholdsRepository
	defaults valueobject.RiskThresholds
}

// NewThresholdsSource creates a new ThresholdsSource.
func NewThresholdsSource(repo port.ThresholdsRepository, defaults valueobject.RiskThresholds) *ThresholdsSource {
	return &ThresholdsSource{repo: repo, defaults: defaults}
}

// Current returns the thresholds in effect and whether they came from storage.
func (s *ThresholdsSource) Current(ctx context.Context) (valueobject.RiskThresholds, bool, error) {
	thresholds, err := s.repo.Get(ctx)
	if errors.Is(err, port.ErrNotFound) {
		return s.defaults, false, nil
	}
	if err != nil {
		return valueobject.RiskThresholds{}, false, fmt.Errorf("failed to load risk thresholds: %w", err)
	}
	return thresholds, true, nil
}

// Classifier returns a rating classifier over the thresholds in effect.
func (s *ThresholdsSource) Classifier(ctx context.Context) (*service.RatingClassifier, error) {
	thresholds, _, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewRatingClassifier(thresholds), nil
}

// GetRiskThresholds is the use case for reading the thresholds in effect.
type GetRiskThresholds struct {
	source *ThresholdsSource
}

// NewGetRiskThresholds creates a new GetRiskThresholds use case.
func NewGetRiskThresholds(source *ThresholdsSource) *GetRiskThresholds {
	return &GetRiskThresholds{source: source}
}

// Execute returns the thresholds in effect.
func (uc *GetRiskThresholds) Execute(ctx context.Context) (dto.RiskThresholdsResponse, error) {
	thresholds, configured, err := uc.source.Current(ctx)
	if err != nil {
		return dto.RiskThresholdsResponse{}, err
	}
	return dto.RiskThresholdsResponse{
		Thresholds: dto.FromThresholds(thresholds),
		Configured: configured,
	}, nil
}

// UpdateRiskThresholds is the use case for replacing the stored thresholds.
type UpdateRiskThresholds struct {
	repo port.ThresholdsRepository
}

// NewUpdateRiskThresholds creates a new UpdateRiskThresholds use case.
func NewUpdateRiskThresholds(repo port.ThresholdsRepository) *UpdateRiskThresholds {
	return &UpdateRiskThresholds{repo: repo}
}

// Execute validates and stores new thresholds. Stored vendor ratings are not
// recomputed; they pick up the new thresholds on their next rollup.
func (uc *UpdateRiskThresholds) Execute(ctx context.Context, req dto.UpdateRiskThresholdsRequest) (dto.RiskThresholdsResponse, error) {
	if req.UpdatedBy == uuid.Nil {
		return dto.RiskThresholdsResponse{}, fmt.Errorf("%w: updated_by is required", ErrInvalidInput)
	}

	thresholds, err := valueobject.NewRiskThresholds(req.VeryLow, req.Low, req.Medium, req.High)
	if err != nil {
		return dto.RiskThresholdsResponse{}, err
	}

	if err := uc.repo.Save(ctx, thresholds, req.UpdatedBy); err != nil {
		return dto.RiskThresholdsResponse{}, fmt.Errorf("failed to save risk thresholds: %w", err)
	}

	return dto.RiskThresholdsResponse{
		Thresholds: dto.FromThresholds(thresholds),
		Configured: true,
	}, nil
}
