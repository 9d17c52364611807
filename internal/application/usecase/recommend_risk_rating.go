package usecase

import (
	"context"
	"fmt"

	"github.com/opengrc/grc/internal/application/dto"
)

// RecommendRiskRating is the use case for mapping a score to a rating.
type RecommendRiskRating struct {
	thresholds *ThresholdsSource
}

// NewRecommendRiskRating creates a new RecommendRiskRating use case.
func NewRecommendRiskRating(thresholds *ThresholdsSource) *RecommendRiskRating {
	return &RecommendRiskRating{thresholds: thresholds}
}

// Execute classifies the score against the thresholds in effect. A nil score
// is rated VERY_LOW.
func (uc *RecommendRiskRating) Execute(ctx context.Context, req dto.RecommendRiskRatingRequest) (dto.RiskRatingResponse, error) {
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return dto.RiskRatingResponse{}, fmt.Errorf("%w: score must be between 0 and 100, got %d", ErrInvalidInput, *req.Score)
	}

	classifier, err := uc.thresholds.Classifier(ctx)
	if err != nil {
		return dto.RiskRatingResponse{}, err
	}

	return dto.RiskRatingResponse{
		Score:      req.Score,
		RiskRating: classifier.Classify(req.Score).String(),
		Thresholds: dto.FromThresholds(classifier.Thresholds()),
	}, nil
}
