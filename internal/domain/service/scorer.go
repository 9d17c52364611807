package service

import (
	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// QuestionScorer maps one question and its answer (nil when unanswered) to a
// risk contribution. AnswerScorer is the production implementation.
type QuestionScorer interface {
	Score(question *model.Question, answer *model.Answer) (valueobject.QuestionScore, error)
}

var two = decimal.NewFromInt(2)

// roundHalfUp returns num/den rounded to the nearest integer, ties toward
// positive infinity: floor((2*num + den) / (2*den)). den must be positive.
func roundHalfUp(num, den decimal.Decimal) int {
	q, r := num.Mul(two).Add(den).QuoRem(den.Mul(two), 0)
	if r.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return int(q.IntPart())
}
