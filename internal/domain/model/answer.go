package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/domain/valueobject"
)

// ErrNotReviewable is returned when a manual score is set on a question that is auto-scored.
var ErrNotReviewable = errors.New("only free-text answers can be manually scored")

// Answer is a respondent's answer to one question of one survey.
type Answer struct {
	updatedAt   time.Time
	reviewedAt  *time.Time
	value       valueobject.AnswerValue
	manualScore valueobject.ManualScore
	id          uuid.UUID
	surveyID    uuid.UUID
	questionID  uuid.UUID
	reviewedBy  uuid.UUID
}

// NewAnswer creates an unreviewed answer.
func NewAnswer(surveyID, questionID uuid.UUID, value valueobject.AnswerValue) (*Answer, error) {
	if surveyID == uuid.Nil {
		return nil, errors.New("survey ID is required")
	}
	if questionID == uuid.Nil {
		return nil, errors.New("question ID is required")
	}
	return &Answer{
		id:          uuid.New(),
		surveyID:    surveyID,
		questionID:  questionID,
		value:       value,
		manualScore: valueobject.ManualScorePending(),
		updatedAt:   time.Now().UTC(),
	}, nil
}

// ReconstructAnswer rebuilds an Answer from persisted data (no validation).
func ReconstructAnswer(
	id, surveyID, questionID uuid.UUID,
	value valueobject.AnswerValue,
	manualScore valueobject.ManualScore,
	reviewedBy uuid.UUID,
	reviewedAt *time.Time,
	updatedAt time.Time,
) *Answer {
	return &Answer{
		id:          id,
		surveyID:    surveyID,
		questionID:  questionID,
		value:       value,
		manualScore: manualScore,
		reviewedBy:  reviewedBy,
		reviewedAt:  reviewedAt,
		updatedAt:   updatedAt,
	}
}

// Review records a reviewer's judgement of a free-text answer.
// Scored values must be within [0,100]; pending clears an earlier review.
func (a *Answer) Review(question *Question, score valueobject.ManualScore, reviewer uuid.UUID) error {
	if question.ID() != a.questionID {
		return fmt.Errorf("answer %s does not belong to question %s", a.id, question.ID())
	}
	if !question.Type().IsFreeText() {
		return fmt.Errorf("%w: question %s is %s", ErrNotReviewable, question.ID(), question.Type())
	}
	if err := score.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	a.manualScore = score
	a.reviewedBy = reviewer
	a.reviewedAt = &now
	a.updatedAt = now
	return nil
}

// --- Accessors ---

func (a *Answer) ID() uuid.UUID                        { return a.id }
func (a *Answer) SurveyID() uuid.UUID                  { return a.surveyID }
func (a *Answer) QuestionID() uuid.UUID                { return a.questionID }
func (a *Answer) Value() valueobject.AnswerValue       { return a.value }
func (a *Answer) ManualScore() valueobject.ManualScore { return a.manualScore }
func (a *Answer) ReviewedBy() uuid.UUID                { return a.reviewedBy }
func (a *Answer) ReviewedAt() *time.Time               { return a.reviewedAt }
func (a *Answer) UpdatedAt() time.Time                 { return a.updatedAt }
