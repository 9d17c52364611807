package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
)

// RollupVendorScore is the use case for deriving a vendor's risk from its
// most recently scored survey.
type RollupVendorScore struct {
	vendors    port.VendorRepository
	surveys    port.SurveyRepository
	thresholds *ThresholdsSource
	rollup     *service.VendorRollup
	metrics    port.ScoringMetrics
}

// NewRollupVendorScore creates a new RollupVendorScore use case.
func NewRollupVendorScore(
	vendors port.VendorRepository,
	surveys port.SurveyRepository,
	thresholds *ThresholdsSource,
	metrics port.ScoringMetrics,
) *RollupVendorScore {
	return &RollupVendorScore{
		vendors:    vendors,
		surveys:    surveys,
		thresholds: thresholds,
		rollup:     service.NewVendorRollup(),
		metrics:    metrics,
	}
}

// Execute rolls the latest survey score up to the vendor. A vendor with no
// scored survey gets score 0 and rating VERY_LOW, and nothing is written.
func (uc *RollupVendorScore) Execute(ctx context.Context, req dto.RollupVendorScoreRequest) (dto.RollupVendorScoreResponse, error) {
	if req.VendorID == uuid.Nil {
		return dto.RollupVendorScoreResponse{}, fmt.Errorf("%w: vendor_id is required", ErrInvalidInput)
	}

	classifier, err := uc.thresholds.Classifier(ctx)
	if err != nil {
		return dto.RollupVendorScoreResponse{}, err
	}

	for attempt := 1; ; attempt++ {
		vendor, err := uc.vendors.FindByID(ctx, req.VendorID)
		if err != nil {
			return dto.RollupVendorScoreResponse{}, fmt.Errorf("failed to find vendor: %w", err)
		}

		surveys, err := uc.surveys.ListByVendor(ctx, req.VendorID)
		if err != nil {
			return dto.RollupVendorScoreResponse{}, fmt.Errorf("failed to list vendor surveys: %w", err)
		}

		result := uc.rollup.Rollup(surveys, classifier)
		resp := dto.RollupVendorScoreResponse{
			VendorID:   req.VendorID,
			RiskScore:  result.Score,
			RiskRating: result.Rating.String(),
		}
		if result.Source == nil {
			return resp, nil
		}

		if err := vendor.ApplyRollup(result.Source.ID(), result.Score, result.Rating, *result.CalculatedAt); err != nil {
			return dto.RollupVendorScoreResponse{}, fmt.Errorf("failed to apply rollup: %w", err)
		}

		err = uc.vendors.SaveRiskRollup(ctx, vendor)
		if errors.Is(err, port.ErrVersionConflict) && attempt < maxSaveAttempts {
			continue
		}
		if err != nil {
			return dto.RollupVendorScoreResponse{}, fmt.Errorf("failed to save vendor risk: %w", err)
		}

		uc.metrics.VendorRolledUp(ctx, result.Rating)

		resp.Updated = true
		resp.SourceSurveyID = result.Source.ID()
		resp.CalculatedAt = vendor.RiskScoreCalculatedAt()
		return resp, nil
	}
}
