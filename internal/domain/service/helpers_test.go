package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

type questionOpt func(p *model.QuestionParams)

func required(p *model.QuestionParams) { p.Required = true }

func weight(w string) questionOpt {
	return func(p *model.QuestionParams) { p.RiskWeight = decimal.RequireFromString(w) }
}

func impact(i valueobject.RiskImpact) questionOpt {
	return func(p *model.QuestionParams) { p.RiskImpact = i }
}

func options(scores map[string]int) questionOpt {
	return func(p *model.QuestionParams) { p.OptionScores = scores }
}

func newQuestion(qt valueobject.QuestionType, opts ...questionOpt) *model.Question {
	p := model.QuestionParams{
		ID:         uuid.New(),
		Type:       qt,
		RiskWeight: decimal.NewFromInt(10),
		RiskImpact: valueobject.RiskImpactNegative,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return model.ReconstructQuestion(p)
}

func newAnswer(t *testing.T, q *model.Question, raw string) *model.Answer {
	t.Helper()
	v, err := valueobject.NewAnswerValue([]byte(raw))
	if err != nil {
		t.Fatalf("invalid answer fixture %q: %v", raw, err)
	}
	return model.ReconstructAnswer(uuid.New(), uuid.Nil, q.ID(), v, valueobject.ManualScorePending(), uuid.Nil, nil, time.Now())
}

func reviewedAnswer(q *model.Question, score valueobject.ManualScore) *model.Answer {
	return model.ReconstructAnswer(uuid.New(), uuid.Nil, q.ID(), valueobject.MustAnswerValue("free text response"),
		score, uuid.New(), nil, time.Now())
}

func newSurvey(questions []*model.Question, answers ...*model.Answer) *model.Survey {
	return model.ReconstructSurvey(uuid.New(), uuid.New(), uuid.New(), "Vendor assessment", questions, answers, nil, nil, 1)
}

func scoredSurvey(vendorID uuid.UUID, score int, at time.Time) *model.Survey {
	return model.ReconstructSurvey(uuid.New(), vendorID, uuid.New(), "", nil, nil, &score, &at, 2)
}
