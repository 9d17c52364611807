package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// ErrUnsupportedQuestionType is returned when a question type has no scoring rule.
// It indicates corrupted or unsupported template data.
var ErrUnsupportedQuestionType = errors.New("unsupported question type")

const (
	scoreNoRisk              = 0
	scoreFullRisk            = 100
	scoreUnmappedOption      = 50
	scoreMissingOptionalFile = 50
)

type scoreFunc func(q *model.Question, v valueobject.AnswerValue) int

// AnswerScorer scores a single answer on a 0-100 risk scale.
type AnswerScorer struct {
	strategies map[valueobject.QuestionType]scoreFunc
}

// NewAnswerScorer creates an AnswerScorer with the built-in rules for
// auto-scored question types.
func NewAnswerScorer() *AnswerScorer {
	return &AnswerScorer{
		strategies: map[valueobject.QuestionType]scoreFunc{
			valueobject.QuestionTypeBoolean:        scoreBoolean,
			valueobject.QuestionTypeSingleChoice:   scoreSingleChoice,
			valueobject.QuestionTypeMultipleChoice: scoreMultipleChoice,
			valueobject.QuestionTypeFile:           scoreFile,
		},
	}
}

// Score applies the rules in priority order: missing answer, free text,
// neutral impact, then the per-type rule.
func (s *AnswerScorer) Score(q *model.Question, a *model.Answer) (valueobject.QuestionScore, error) {
	if a == nil || a.Value().IsEmpty() {
		return valueobject.ScoreOf(missingAnswerScore(q)), nil
	}

	if q.Type().IsFreeText() {
		return scoreFreeText(a.ManualScore()), nil
	}

	if q.RiskImpact().Equal(valueobject.RiskImpactNeutral) {
		return valueobject.ScoreOf(scoreNoRisk), nil
	}

	fn, ok := s.strategies[q.Type()]
	if !ok {
		return valueobject.QuestionScore{}, fmt.Errorf("%w %q on question %s", ErrUnsupportedQuestionType, q.Type(), q.ID())
	}
	return valueobject.ScoreOf(fn(q, a.Value())), nil
}

func missingAnswerScore(q *model.Question) int {
	if q.Required() {
		return scoreFullRisk
	}
	return scoreNoRisk
}

// scoreFreeText never looks at the text itself. Unreviewed answers stay out
// of the aggregate until a reviewer scores them.
func scoreFreeText(manual valueobject.ManualScore) valueobject.QuestionScore {
	if manual.IsNotApplicable() {
		return valueobject.NotApplicableScore()
	}
	if v, ok := manual.Value(); ok {
		return valueobject.ScoreOf(v)
	}
	return valueobject.PendingReviewScore()
}

func scoreBoolean(q *model.Question, v valueobject.AnswerValue) int {
	yes := v.Truthy()
	if q.RiskImpact().Equal(valueobject.RiskImpactNegative) {
		if yes {
			return scoreFullRisk
		}
		return scoreNoRisk
	}
	if yes {
		return scoreNoRisk
	}
	return scoreFullRisk
}

func scoreSingleChoice(q *model.Question, v valueobject.AnswerValue) int {
	if !q.HasOptionScores() {
		return scoreNoRisk
	}
	labels := v.Labels()
	if len(labels) == 0 {
		return missingAnswerScore(q)
	}
	return optionScore(q, labels[0])
}

func scoreMultipleChoice(q *model.Question, v valueobject.AnswerValue) int {
	if !q.HasOptionScores() {
		return scoreNoRisk
	}
	labels := v.Labels()
	if len(labels) == 0 {
		return missingAnswerScore(q)
	}

	total := 0
	for _, label := range labels {
		total += optionScore(q, label)
	}
	return roundHalfUp(decimal.NewFromInt(int64(total)), decimal.NewFromInt(int64(len(labels))))
}

func optionScore(q *model.Question, label string) int {
	if score, ok := q.OptionScore(label); ok {
		return score
	}
	return scoreUnmappedOption
}

func scoreFile(q *model.Question, v valueobject.AnswerValue) int {
	if v.HasFile() {
		return scoreNoRisk
	}
	if q.Required() {
		return scoreFullRisk
	}
	return scoreMissingOptionalFile
}
