package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

var hundred = decimal.NewFromInt(100)

// BreakdownLine records how one weighted question contributed to a survey score.
type BreakdownLine struct {
	Question *model.Question
	Answer   *model.Answer
	Score    valueobject.QuestionScore
}

// WeightedScore returns score*weight/100, or zero for excluded questions.
func (l BreakdownLine) WeightedScore() decimal.Decimal {
	if !l.Score.IsApplicable() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(l.Score.Value())).Mul(l.Question.RiskWeight()).Div(hundred)
}

// AggregateResult is the outcome of scoring a whole survey.
type AggregateResult struct {
	WeightedSum decimal.Decimal
	TotalWeight decimal.Decimal
	Lines       []BreakdownLine
	Score       int
}

// ScoredCount returns the number of questions that took part in the average.
func (r AggregateResult) ScoredCount() int {
	n := 0
	for _, l := range r.Lines {
		if l.Score.IsApplicable() {
			n++
		}
	}
	return n
}

// ExcludedCount returns the number of weighted questions left out as not applicable.
func (r AggregateResult) ExcludedCount() int {
	return len(r.Lines) - r.ScoredCount()
}

// SurveyAggregator combines per-question scores into one survey score as a
// weighted average. Not-applicable questions are left out of both the sum
// and the total weight.
type SurveyAggregator struct {
	scorer QuestionScorer
}

// NewSurveyAggregator creates a new SurveyAggregator.
func NewSurveyAggregator(scorer QuestionScorer) *SurveyAggregator {
	return &SurveyAggregator{scorer: scorer}
}

// Aggregate scores every weighted question of the survey. A survey without a
// template, without weighted questions or with only excluded questions scores 0.
func (a *SurveyAggregator) Aggregate(survey *model.Survey) (AggregateResult, error) {
	weighted := survey.WeightedQuestions()
	result := AggregateResult{
		WeightedSum: decimal.Zero,
		TotalWeight: decimal.Zero,
		Lines:       make([]BreakdownLine, 0, len(weighted)),
	}

	for _, q := range weighted {
		answer := survey.AnswerFor(q.ID())
		score, err := a.scorer.Score(q, answer)
		if err != nil {
			return AggregateResult{}, fmt.Errorf("failed to score question %s: %w", q.ID(), err)
		}

		result.Lines = append(result.Lines, BreakdownLine{Question: q, Answer: answer, Score: score})
		if !score.IsApplicable() {
			continue
		}

		result.WeightedSum = result.WeightedSum.Add(decimal.NewFromInt(int64(score.Value())).Mul(q.RiskWeight()))
		result.TotalWeight = result.TotalWeight.Add(q.RiskWeight())
	}

	if result.TotalWeight.IsZero() {
		return result, nil
	}

	result.Score = roundHalfUp(result.WeightedSum, result.TotalWeight)
	return result, nil
}
