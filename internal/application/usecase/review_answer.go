package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// ReviewAnswer is the use case for manually scoring a free-text answer and
// rescoring its survey.
type ReviewAnswer struct {
	answers   port.AnswerRepository
	surveys   port.SurveyRepository
	calculate *CalculateSurveyScore
}

// NewReviewAnswer creates a new ReviewAnswer use case.
func NewReviewAnswer(answers port.AnswerRepository, surveys port.SurveyRepository, calculate *CalculateSurveyScore) *ReviewAnswer {
	return &ReviewAnswer{answers: answers, surveys: surveys, calculate: calculate}
}

// Execute stores the review decision and recalculates the survey score.
func (uc *ReviewAnswer) Execute(ctx context.Context, req dto.ReviewAnswerRequest) (dto.ReviewAnswerResponse, error) {
	if req.AnswerID == uuid.Nil || req.ReviewerID == uuid.Nil {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("%w: answer_id and reviewer_id are required", ErrInvalidInput)
	}

	score, err := manualScoreFromRequest(req)
	if err != nil {
		return dto.ReviewAnswerResponse{}, err
	}

	answer, err := uc.answers.FindByID(ctx, req.AnswerID)
	if err != nil {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("failed to find answer: %w", err)
	}

	survey, err := uc.surveys.FindByID(ctx, answer.SurveyID())
	if err != nil {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("failed to find survey: %w", err)
	}

	question, ok := survey.Question(answer.QuestionID())
	if !ok {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("failed to find question %s: %w", answer.QuestionID(), port.ErrNotFound)
	}

	if err := answer.Review(question, score, req.ReviewerID); err != nil {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("failed to review answer: %w", err)
	}

	if err := uc.answers.SaveReview(ctx, answer); err != nil {
		return dto.ReviewAnswerResponse{}, fmt.Errorf("failed to save review: %w", err)
	}

	scored, err := uc.calculate.Execute(ctx, dto.CalculateSurveyScoreRequest{SurveyID: survey.ID()})
	if err != nil {
		return dto.ReviewAnswerResponse{}, err
	}

	return dto.ReviewAnswerResponse{
		AnswerID:    answer.ID(),
		ManualScore: answer.ManualScore().String(),
		Survey:      scored,
	}, nil
}

func manualScoreFromRequest(req dto.ReviewAnswerRequest) (valueobject.ManualScore, error) {
	switch req.Decision {
	case dto.ReviewDecisionScored:
		if req.Score == nil {
			return valueobject.ManualScore{}, fmt.Errorf("%w: score is required for decision %s", ErrInvalidInput, req.Decision)
		}
		score := valueobject.ManualScoreOf(*req.Score)
		if err := score.Validate(); err != nil {
			return valueobject.ManualScore{}, err
		}
		return score, nil
	case dto.ReviewDecisionNotApplicable:
		return valueobject.ManualScoreNotApplicable(), nil
	case dto.ReviewDecisionPending:
		return valueobject.ManualScorePending(), nil
	default:
		return valueobject.ManualScore{}, fmt.Errorf("%w: unknown review decision %q", ErrInvalidInput, req.Decision)
	}
}
