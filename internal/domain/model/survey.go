package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/domain/event"
	"github.com/opengrc/grc/pkg/events"
)

// Survey is the aggregate root for a vendor questionnaire instance: the
// template's ordered questions, the answers given so far, and the derived risk score.
type Survey struct {
	events.EventCollector
	calculatedAt *time.Time
	riskScore    *int
	answers      map[uuid.UUID]*Answer
	title        string
	questions    []*Question
	version      int
	id           uuid.UUID
	vendorID     uuid.UUID
	templateID   uuid.UUID
}

// ReconstructSurvey rebuilds a Survey from persisted data (no validation, no events).
// Questions are ordered by Position.
func ReconstructSurvey(
	id, vendorID, templateID uuid.UUID,
	title string,
	questions []*Question,
	answers []*Answer,
	riskScore *int,
	calculatedAt *time.Time,
	version int,
) *Survey {
	ordered := slices.Clone(questions)
	slices.SortStableFunc(ordered, func(a, b *Question) int { return a.Position() - b.Position() })

	byQuestion := make(map[uuid.UUID]*Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID()] = a
	}

	return &Survey{
		id:           id,
		vendorID:     vendorID,
		templateID:   templateID,
		title:        title,
		questions:    ordered,
		answers:      byQuestion,
		riskScore:    riskScore,
		calculatedAt: calculatedAt,
		version:      version,
	}
}

// HasTemplate reports whether the survey was issued from a template.
func (s *Survey) HasTemplate() bool { return s.templateID != uuid.Nil }

// Questions returns the template questions in template order.
func (s *Survey) Questions() []*Question { return slices.Clone(s.questions) }

// WeightedQuestions returns the questions with a positive risk weight, in template order.
func (s *Survey) WeightedQuestions() []*Question {
	if !s.HasTemplate() {
		return nil
	}
	weighted := make([]*Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.IsWeighted() {
			weighted = append(weighted, q)
		}
	}
	return weighted
}

// Question looks up a template question by ID.
func (s *Survey) Question(id uuid.UUID) (*Question, bool) {
	for _, q := range s.questions {
		if q.ID() == id {
			return q, true
		}
	}
	return nil, false
}

// AnswerFor returns the answer to a question, or nil if unanswered.
func (s *Survey) AnswerFor(questionID uuid.UUID) *Answer {
	return s.answers[questionID]
}

// ApplyRiskScore stores a freshly calculated score and its timestamp and
// records a SurveyRiskScored event.
func (s *Survey) ApplyRiskScore(score, scored, excluded int, at time.Time) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("risk score must be between 0 and 100, got %d", score)
	}

	at = at.UTC()
	s.riskScore = &score
	s.calculatedAt = &at
	s.version++

	s.Record(event.NewSurveyRiskScored(s.id, s.vendorID, score, scored, excluded, at))
	return nil
}

// --- Accessors ---

func (s *Survey) ID() uuid.UUID                     { return s.id }
func (s *Survey) VendorID() uuid.UUID               { return s.vendorID }
func (s *Survey) TemplateID() uuid.UUID             { return s.templateID }
func (s *Survey) Title() string                     { return s.title }
func (s *Survey) RiskScore() *int                   { return s.riskScore }
func (s *Survey) RiskScoreCalculatedAt() *time.Time { return s.calculatedAt }
func (s *Survey) Version() int                      { return s.version }

// IsScored reports whether the survey has a calculated risk score.
func (s *Survey) IsScored() bool { return s.riskScore != nil && s.calculatedAt != nil }

// DomainEvents returns all accumulated domain events and clears them.
func (s *Survey) DomainEvents() []events.DomainEvent {
	return s.ClearEvents()
}
