package model

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/valueobject"
)

// QuestionParams carries the fields of a template question.
type QuestionParams struct {
	OptionScores map[string]int
	RiskWeight   decimal.Decimal
	Type         valueobject.QuestionType
	RiskImpact   valueobject.RiskImpact
	Text         string
	Position     int
	Required     bool
	ID           uuid.UUID
	TemplateID   uuid.UUID
}

// Question is a template question. It is immutable once loaded into a survey.
type Question struct {
	optionScores map[string]int
	riskWeight   decimal.Decimal
	questionType valueobject.QuestionType
	riskImpact   valueobject.RiskImpact
	text         string
	position     int
	required     bool
	id           uuid.UUID
	templateID   uuid.UUID
}

// NewQuestion creates a validated question.
func NewQuestion(p QuestionParams) (*Question, error) {
	if p.ID == uuid.Nil {
		return nil, errors.New("question ID is required")
	}
	if p.Type.IsZero() {
		return nil, errors.New("question type is required")
	}
	if p.RiskImpact.IsZero() {
		return nil, errors.New("risk impact is required")
	}
	if p.RiskWeight.IsNegative() {
		return nil, fmt.Errorf("risk weight must not be negative, got %s", p.RiskWeight)
	}
	for label, score := range p.OptionScores {
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("option %q score must be between 0 and 100, got %d", label, score)
		}
	}
	return ReconstructQuestion(p), nil
}

// ReconstructQuestion rebuilds a Question from persisted data (no validation).
func ReconstructQuestion(p QuestionParams) *Question {
	return &Question{
		id:           p.ID,
		templateID:   p.TemplateID,
		text:         p.Text,
		position:     p.Position,
		questionType: p.Type,
		riskWeight:   p.RiskWeight,
		riskImpact:   p.RiskImpact,
		required:     p.Required,
		optionScores: maps.Clone(p.OptionScores),
	}
}

// --- Accessors ---

func (q *Question) ID() uuid.UUID                      { return q.id }
func (q *Question) TemplateID() uuid.UUID              { return q.templateID }
func (q *Question) Text() string                       { return q.text }
func (q *Question) Position() int                      { return q.position }
func (q *Question) Type() valueobject.QuestionType     { return q.questionType }
func (q *Question) RiskWeight() decimal.Decimal        { return q.riskWeight }
func (q *Question) RiskImpact() valueobject.RiskImpact { return q.riskImpact }
func (q *Question) Required() bool                     { return q.required }

// OptionScores returns a copy of the option label to score table.
func (q *Question) OptionScores() map[string]int { return maps.Clone(q.optionScores) }

// OptionScore looks up the score of one option label.
func (q *Question) OptionScore(label string) (int, bool) {
	score, ok := q.optionScores[label]
	return score, ok
}

// HasOptionScores reports whether any option carries a score.
func (q *Question) HasOptionScores() bool { return len(q.optionScores) > 0 }

// IsWeighted reports whether the question takes part in scoring.
func (q *Question) IsWeighted() bool { return q.riskWeight.IsPositive() }
