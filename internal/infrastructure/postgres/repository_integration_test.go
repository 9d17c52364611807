//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengrc/grc/internal/domain/event"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/internal/infrastructure/postgres"
	"github.com/opengrc/grc/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Cleanup(t) })
	pc.RunMigrations(t, "migrations")
	return pc
}

func seed(t *testing.T, pc *testutil.PostgresContainer, sql string, args ...any) {
	t.Helper()
	_, err := pc.Pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func TestSurveyRepository_Integration(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	vendorID, templateID, surveyID := testutil.TestVendorID, uuid.New(), testutil.TestSurveyID1
	boolQ, choiceQ, textQ := uuid.New(), uuid.New(), uuid.New()
	textAnswer := uuid.New()

	seed(t, pc, `INSERT INTO vendors (id, name) VALUES ($1, 'Acme Hosting')`, vendorID)
	seed(t, pc, `INSERT INTO survey_templates (id, title) VALUES ($1, 'Security baseline')`, templateID)
	seed(t, pc, `INSERT INTO questions (id, template_id, position, text, question_type, risk_weight, risk_impact, option_scores, required)
		VALUES ($1, $4, 2, 'Encrypted at rest?', 'BOOLEAN', 20, 'POSITIVE', NULL, true),
		       ($2, $4, 1, 'Hosting region', 'SINGLE_CHOICE', 10, 'NEGATIVE', '{"EU":20,"US":70}', false),
		       ($3, $4, 3, 'Incident process', 'LONG_TEXT', 30, 'NEGATIVE', NULL, false)`,
		boolQ, choiceQ, textQ, templateID)
	seed(t, pc, `INSERT INTO surveys (id, vendor_id, template_id, title) VALUES ($1, $2, $3, 'Q3 review')`,
		surveyID, vendorID, templateID)
	seed(t, pc, `INSERT INTO answers (id, survey_id, question_id, value)
		VALUES ($1, $3, $4, 'true'), ($2, $3, $5, '"US"'), ($6, $3, $7, '"We page on-call"')`,
		uuid.New(), uuid.New(), surveyID, boolQ, choiceQ, textAnswer, textQ)

	surveys := postgres.NewSurveyRepository(pc.Pool)
	answers := postgres.NewAnswerRepository(pc.Pool)
	outbox := postgres.NewOutboxRepository(pc.Pool)

	t.Run("loads questions in template order with answers", func(t *testing.T) {
		survey, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)

		questions := survey.Questions()
		require.Len(t, questions, 3)
		assert.Equal(t, choiceQ, questions[0].ID())
		assert.Equal(t, boolQ, questions[1].ID())
		assert.Equal(t, textQ, questions[2].ID())
		require.NotNil(t, survey.AnswerFor(choiceQ))
		assert.Equal(t, []string{"US"}, survey.AnswerFor(choiceQ).Value().Labels())
		assert.False(t, survey.IsScored())
	})

	t.Run("unknown survey is not found", func(t *testing.T) {
		_, err := surveys.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, port.ErrNotFound)
		testutil.AssertErrorContains(t, err, "survey")
	})

	t.Run("saves a review", func(t *testing.T) {
		answer, err := answers.FindByID(ctx, textAnswer)
		require.NoError(t, err)
		survey, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)
		q, ok := survey.Question(textQ)
		require.True(t, ok)

		require.NoError(t, answer.Review(q, valueobject.ManualScoreOf(35), testutil.TestReviewerID))
		require.NoError(t, answers.SaveReview(ctx, answer))

		reloaded, err := answers.FindByID(ctx, textAnswer)
		testutil.RequireNoError(t, err, "reload reviewed answer")
		v, ok := reloaded.ManualScore().Value()
		assert.True(t, ok)
		assert.Equal(t, 35, v)
		assert.Equal(t, testutil.TestReviewerID, reloaded.ReviewedBy())
	})

	t.Run("saves the score with an outbox entry", func(t *testing.T) {
		survey, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)
		require.NoError(t, survey.ApplyRiskScore(48, 3, 0, time.Now()))

		require.NoError(t, surveys.SaveRiskScore(ctx, survey))

		reloaded, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.RiskScore())
		assert.Equal(t, 48, *reloaded.RiskScore())
		assert.Equal(t, 2, reloaded.Version())

		entries, err := outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, event.EventTypeSurveyRiskScored, entries[0].EventType)
		assert.Equal(t, surveyID, entries[0].AggregateID)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
		assert.EqualValues(t, 48, payload["risk_score"])

		require.NoError(t, outbox.MarkPublished(ctx, []uuid.UUID{entries[0].ID}))
		remaining, err := outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("stale write is a version conflict", func(t *testing.T) {
		first, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)
		second, err := surveys.FindByID(ctx, surveyID)
		require.NoError(t, err)

		require.NoError(t, first.ApplyRiskScore(50, 3, 0, time.Now()))
		require.NoError(t, surveys.SaveRiskScore(ctx, first))

		require.NoError(t, second.ApplyRiskScore(51, 3, 0, time.Now()))
		err = surveys.SaveRiskScore(ctx, second)
		assert.ErrorIs(t, err, port.ErrVersionConflict)
	})

	t.Run("lists vendor surveys", func(t *testing.T) {
		list, err := surveys.ListByVendor(ctx, vendorID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].IsScored())
	})
}

func TestVendorAndThresholdsRepository_Integration(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	vendorID := testutil.TestVendorID
	seed(t, pc, `INSERT INTO vendors (id, name) VALUES ($1, 'Acme Hosting')`, vendorID)

	vendors := postgres.NewVendorRepository(pc.Pool)
	thresholds := postgres.NewThresholdsRepository(pc.Pool)

	t.Run("rolls up vendor risk", func(t *testing.T) {
		vendor, err := vendors.FindByID(ctx, vendorID)
		require.NoError(t, err)
		assert.Nil(t, vendor.RiskScore())

		require.NoError(t, vendor.ApplyRollup(testutil.TestSurveyID2, 90, valueobject.RiskRatingCritical, time.Now()))
		require.NoError(t, vendors.SaveRiskRollup(ctx, vendor))

		reloaded, err := vendors.FindByID(ctx, vendorID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.RiskScore())
		assert.Equal(t, 90, *reloaded.RiskScore())
		assert.Equal(t, valueobject.RiskRatingCritical, reloaded.RiskRating())

		var count int
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1`, vendorID).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("thresholds are not found until saved", func(t *testing.T) {
		_, err := thresholds.Get(ctx)
		assert.ErrorIs(t, err, port.ErrNotFound)

		want, err := valueobject.NewRiskThresholds(10, 30, 50, 70)
		require.NoError(t, err)
		require.NoError(t, thresholds.Save(ctx, want, testutil.TestUserID))

		got, err := thresholds.Get(ctx)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	})
}
