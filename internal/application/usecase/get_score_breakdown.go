package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
)

// GetScoreBreakdown is the use case for explaining a survey score question by
// question. It does not persist anything.
type GetScoreBreakdown struct {
	surveys    port.SurveyRepository
	aggregator *service.SurveyAggregator
}

// NewGetScoreBreakdown creates a new GetScoreBreakdown use case.
func NewGetScoreBreakdown(surveys port.SurveyRepository, aggregator *service.SurveyAggregator) *GetScoreBreakdown {
	return &GetScoreBreakdown{surveys: surveys, aggregator: aggregator}
}

// Execute scores the survey in memory and returns one line per weighted question.
func (uc *GetScoreBreakdown) Execute(ctx context.Context, req dto.GetScoreBreakdownRequest) (dto.ScoreBreakdownResponse, error) {
	if req.SurveyID == uuid.Nil {
		return dto.ScoreBreakdownResponse{}, fmt.Errorf("%w: survey_id is required", ErrInvalidInput)
	}

	survey, err := uc.surveys.FindByID(ctx, req.SurveyID)
	if err != nil {
		return dto.ScoreBreakdownResponse{}, fmt.Errorf("failed to find survey: %w", err)
	}

	result, err := uc.aggregator.Aggregate(survey)
	if err != nil {
		return dto.ScoreBreakdownResponse{}, fmt.Errorf("failed to calculate survey score: %w", err)
	}

	lines := make([]dto.BreakdownLine, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, dto.FromBreakdownLine(l))
	}

	return dto.ScoreBreakdownResponse{
		SurveyID:        survey.ID(),
		RiskScore:       result.Score,
		TotalWeight:     result.TotalWeight.String(),
		StoredRiskScore: survey.RiskScore(),
		CalculatedAt:    survey.RiskScoreCalculatedAt(),
		Lines:           lines,
	}, nil
}
