package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
)

// Failure reasons reported to ScoringMetrics.
const (
	FailureReasonLoad    = "load"
	FailureReasonScoring = "scoring"
	FailureReasonSave    = "save"
	FailureReasonRollup  = "rollup"
)

// CalculateSurveyScore is the use case for scoring a survey and persisting
// the result.
type CalculateSurveyScore struct {
	surveys    port.SurveyRepository
	aggregator *service.SurveyAggregator
	thresholds *ThresholdsSource
	metrics    port.ScoringMetrics
	rollup     *RollupVendorScore
	logger     *slog.Logger
	now        func() time.Time
}

// NewCalculateSurveyScore creates a new CalculateSurveyScore use case.
// When rollup is non-nil the vendor is rolled up after every successful score.
func NewCalculateSurveyScore(
	surveys port.SurveyRepository,
	aggregator *service.SurveyAggregator,
	thresholds *ThresholdsSource,
	metrics port.ScoringMetrics,
	rollup *RollupVendorScore,
	logger *slog.Logger,
) *CalculateSurveyScore {
	return &CalculateSurveyScore{
		surveys:    surveys,
		aggregator: aggregator,
		thresholds: thresholds,
		metrics:    metrics,
		rollup:     rollup,
		logger:     logger,
		now:        time.Now,
	}
}

// Execute recalculates the survey score from its current answers and stores
// it with the calculation time. Recalculating unchanged answers yields the
// same score. Once the score is stored, threshold lookup and rollup failures
// are logged and do not fail the call; VendorRollup is nil in that case.
func (uc *CalculateSurveyScore) Execute(ctx context.Context, req dto.CalculateSurveyScoreRequest) (dto.SurveyScoreResponse, error) {
	if req.SurveyID == uuid.Nil {
		return dto.SurveyScoreResponse{}, fmt.Errorf("%w: survey_id is required", ErrInvalidInput)
	}

	survey, result, err := uc.scoreAndSave(ctx, req.SurveyID)
	if err != nil {
		return dto.SurveyScoreResponse{}, err
	}
	uc.metrics.SurveyScored(ctx, result.Score)

	classifier, err := uc.thresholds.Classifier(ctx)
	if err != nil {
		uc.logger.WarnContext(ctx, "rating survey with default thresholds",
			slog.String("survey_id", survey.ID().String()),
			slog.String("error", err.Error()),
		)
		classifier = service.NewRatingClassifier(uc.thresholds.defaults)
	}

	resp := dto.SurveyScoreResponse{
		SurveyID:          survey.ID(),
		VendorID:          survey.VendorID(),
		RiskScore:         result.Score,
		RiskRating:        classifier.ClassifyScore(result.Score).String(),
		ScoredQuestions:   result.ScoredCount(),
		ExcludedQuestions: result.ExcludedCount(),
		CalculatedAt:      *survey.RiskScoreCalculatedAt(),
	}

	if uc.rollup != nil && survey.VendorID() != uuid.Nil {
		rolled, err := uc.rollup.Execute(ctx, dto.RollupVendorScoreRequest{VendorID: survey.VendorID()})
		if err != nil {
			uc.metrics.CalculationFailed(ctx, FailureReasonRollup)
			uc.logger.ErrorContext(ctx, "failed to roll up vendor score",
				slog.String("survey_id", survey.ID().String()),
				slog.String("vendor_id", survey.VendorID().String()),
				slog.String("error", err.Error()),
			)
			return resp, nil
		}
		resp.VendorRollup = &rolled
	}

	return resp, nil
}

func (uc *CalculateSurveyScore) scoreAndSave(ctx context.Context, surveyID uuid.UUID) (*model.Survey, service.AggregateResult, error) {
	for attempt := 1; ; attempt++ {
		survey, err := uc.surveys.FindByID(ctx, surveyID)
		if err != nil {
			if !errors.Is(err, port.ErrNotFound) {
				uc.metrics.CalculationFailed(ctx, FailureReasonLoad)
			}
			return nil, service.AggregateResult{}, fmt.Errorf("failed to find survey: %w", err)
		}

		result, err := uc.aggregator.Aggregate(survey)
		if err != nil {
			uc.metrics.CalculationFailed(ctx, FailureReasonScoring)
			return nil, service.AggregateResult{}, fmt.Errorf("failed to calculate survey score: %w", err)
		}

		if err := survey.ApplyRiskScore(result.Score, result.ScoredCount(), result.ExcludedCount(), uc.now()); err != nil {
			uc.metrics.CalculationFailed(ctx, FailureReasonScoring)
			return nil, service.AggregateResult{}, fmt.Errorf("failed to apply survey score: %w", err)
		}

		err = uc.surveys.SaveRiskScore(ctx, survey)
		if errors.Is(err, port.ErrVersionConflict) && attempt < maxSaveAttempts {
			continue
		}
		if err != nil {
			uc.metrics.CalculationFailed(ctx, FailureReasonSave)
			return nil, service.AggregateResult{}, fmt.Errorf("failed to save survey score: %w", err)
		}
		return survey, result, nil
	}
}
