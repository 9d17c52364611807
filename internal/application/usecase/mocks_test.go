package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock implementations ---

type mockSurveyRepository struct {
	saved            []*model.Survey
	findByIDFunc     func(ctx context.Context, id uuid.UUID) (*model.Survey, error)
	listByVendorFunc func(ctx context.Context, vendorID uuid.UUID) ([]*model.Survey, error)
	saveFunc         func(ctx context.Context, survey *model.Survey) error
	findCalls        int
}

func (m *mockSurveyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockSurveyRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*model.Survey, error) {
	if m.listByVendorFunc != nil {
		return m.listByVendorFunc(ctx, vendorID)
	}
	return nil, nil
}

func (m *mockSurveyRepository) SaveRiskScore(ctx context.Context, survey *model.Survey) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, survey); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, survey)
	return nil
}

type mockVendorRepository struct {
	saved        []*model.Vendor
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	saveFunc     func(ctx context.Context, vendor *model.Vendor) error
}

func (m *mockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockVendorRepository) SaveRiskRollup(ctx context.Context, vendor *model.Vendor) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, vendor); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, vendor)
	return nil
}

type mockAnswerRepository struct {
	saved        []*model.Answer
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Answer, error)
}

func (m *mockAnswerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockAnswerRepository) SaveReview(_ context.Context, answer *model.Answer) error {
	m.saved = append(m.saved, answer)
	return nil
}

type mockThresholdsRepository struct {
	stored    *valueobject.RiskThresholds
	updatedBy uuid.UUID
	getErr    error
}

func (m *mockThresholdsRepository) Get(_ context.Context) (valueobject.RiskThresholds, error) {
	if m.getErr != nil {
		return valueobject.RiskThresholds{}, m.getErr
	}
	if m.stored == nil {
		return valueobject.RiskThresholds{}, port.ErrNotFound
	}
	return *m.stored, nil
}

func (m *mockThresholdsRepository) Save(_ context.Context, thresholds valueobject.RiskThresholds, updatedBy uuid.UUID) error {
	m.stored = &thresholds
	m.updatedBy = updatedBy
	return nil
}

type mockMetrics struct {
	mu       sync.Mutex
	scores   []int
	ratings  []string
	failures []string
}

func (m *mockMetrics) SurveyScored(_ context.Context, score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, score)
}

func (m *mockMetrics) VendorRolledUp(_ context.Context, rating valueobject.RiskRating) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings = append(m.ratings, rating.String())
}

func (m *mockMetrics) CalculationFailed(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
}

// --- Fixtures ---

func booleanQuestion(w int64, impact valueobject.RiskImpact) *model.Question {
	return model.ReconstructQuestion(model.QuestionParams{
		ID:         uuid.New(),
		Type:       valueobject.QuestionTypeBoolean,
		RiskWeight: decimal.NewFromInt(w),
		RiskImpact: impact,
		Text:       "Do you store customer data offshore?",
	})
}

func textQuestion(w int64) *model.Question {
	return model.ReconstructQuestion(model.QuestionParams{
		ID:         uuid.New(),
		Type:       valueobject.QuestionTypeLongText,
		RiskWeight: decimal.NewFromInt(w),
		RiskImpact: valueobject.RiskImpactNegative,
		Text:       "Describe your incident response process.",
	})
}

func answerFor(surveyID uuid.UUID, q *model.Question, value any) *model.Answer {
	return model.ReconstructAnswer(uuid.New(), surveyID, q.ID(), valueobject.MustAnswerValue(value),
		valueobject.ManualScorePending(), uuid.Nil, nil, time.Now())
}

// surveyFixture rebuilds a fresh survey on every load so retried loads do not
// see mutations from earlier attempts.
type surveyFixture struct {
	id        uuid.UUID
	vendorID  uuid.UUID
	questions []*model.Question
	answers   []*model.Answer
}

func newSurveyFixture(vendorID uuid.UUID) *surveyFixture {
	return &surveyFixture{id: uuid.New(), vendorID: vendorID}
}

func (f *surveyFixture) with(q *model.Question, value any) *surveyFixture {
	f.questions = append(f.questions, q)
	if value != nil {
		f.answers = append(f.answers, answerFor(f.id, q, value))
	}
	return f
}

func (f *surveyFixture) load() *model.Survey {
	return model.ReconstructSurvey(f.id, f.vendorID, uuid.New(), "Annual vendor review", f.questions, f.answers, nil, nil, 1)
}

func (f *surveyFixture) findByID(t *testing.T) func(context.Context, uuid.UUID) (*model.Survey, error) {
	return func(_ context.Context, id uuid.UUID) (*model.Survey, error) {
		if id != f.id {
			t.Errorf("unexpected survey id %s", id)
			return nil, port.ErrNotFound
		}
		return f.load(), nil
	}
}

func scoredSurvey(vendorID uuid.UUID, score int, at time.Time) *model.Survey {
	return model.ReconstructSurvey(uuid.New(), vendorID, uuid.New(), "", nil, nil, &score, &at, 2)
}

func vendorLoader(id uuid.UUID) func(context.Context, uuid.UUID) (*model.Vendor, error) {
	return func(_ context.Context, vendorID uuid.UUID) (*model.Vendor, error) {
		if vendorID != id {
			return nil, port.ErrNotFound
		}
		return model.ReconstructVendor(id, "Acme Hosting", nil, valueobject.RiskRatingVeryLow, nil, 1), nil
	}
}

func newAggregator() *service.SurveyAggregator {
	return service.NewSurveyAggregator(service.NewAnswerScorer())
}
