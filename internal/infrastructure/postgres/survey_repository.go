package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
	pgutil "github.com/opengrc/grc/pkg/postgres"
)

// SurveyRepository implements port.SurveyRepository using PostgreSQL.
type SurveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository creates a new PostgreSQL-backed SurveyRepository.
func NewSurveyRepository(pool *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{pool: pool}
}

const surveyColumns = `id, vendor_id, template_id, title, risk_score, risk_score_calculated_at, version`

// FindByID retrieves a survey with its template questions and answers.
func (r *SurveyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	row := surveyRow{}
	err := r.pool.QueryRow(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id).
		Scan(row.dest()...)
	if err != nil {
		if pgutil.IsNoRows(err) {
			return nil, fmt.Errorf("survey %s: %w", id, port.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query survey: %w", err)
	}

	var questions []*model.Question
	if row.templateID != nil {
		questions, err = loadQuestions(ctx, r.pool, *row.templateID)
		if err != nil {
			return nil, err
		}
	}

	answers, err := loadAnswers(ctx, r.pool, `WHERE survey_id = $1`, id)
	if err != nil {
		return nil, err
	}

	return row.survey(questions, answers), nil
}

// ListByVendor retrieves the score fields of every survey of a vendor.
func (r *SurveyRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*model.Survey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE vendor_id = $1 ORDER BY risk_score_calculated_at DESC NULLS LAST, id`,
		vendorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*model.Survey
	for rows.Next() {
		row := surveyRow{}
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan survey row: %w", err)
		}
		surveys = append(surveys, row.survey(nil, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate surveys: %w", err)
	}

	return surveys, nil
}

// SaveRiskScore writes the survey score with optimistic concurrency control
// and stores its domain events in the outbox within the same transaction.
func (r *SurveyRepository) SaveRiskScore(ctx context.Context, survey *model.Survey) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		const updateSQL = `
			UPDATE surveys SET
				risk_score = $2,
				risk_score_calculated_at = $3,
				version = $4,
				updated_at = NOW()
			WHERE id = $1 AND version = $4 - 1
		`

		result, err := tx.Exec(ctx, updateSQL,
			survey.ID(),
			survey.RiskScore(),
			survey.RiskScoreCalculatedAt(),
			survey.Version(),
		)
		if err != nil {
			return fmt.Errorf("failed to update survey score: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("survey %s has been modified: %w", survey.ID(), port.ErrVersionConflict)
		}

		return insertOutbox(ctx, tx, survey.DomainEvents())
	})
}

type surveyRow struct {
	id           uuid.UUID
	vendorID     *uuid.UUID
	templateID   *uuid.UUID
	title        string
	riskScore    *int
	calculatedAt *time.Time
	version      int
}

func (s *surveyRow) dest() []any {
	return []any{&s.id, &s.vendorID, &s.templateID, &s.title, &s.riskScore, &s.calculatedAt, &s.version}
}

func (s *surveyRow) survey(questions []*model.Question, answers []*model.Answer) *model.Survey {
	return model.ReconstructSurvey(
		s.id, derefUUID(s.vendorID), derefUUID(s.templateID), s.title,
		questions, answers, s.riskScore, s.calculatedAt, s.version,
	)
}

func loadQuestions(ctx context.Context, q pgutil.Querier, templateID uuid.UUID) ([]*model.Question, error) {
	rows, err := q.Query(ctx, `
		SELECT id, template_id, position, text, question_type, risk_weight, risk_impact, option_scores, required
		FROM questions
		WHERE template_id = $1
		ORDER BY position, id
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []*model.Question
	for rows.Next() {
		var (
			id, tmplID   uuid.UUID
			position     int
			text         string
			questionType string
			riskWeight   decimal.Decimal
			riskImpact   string
			optionScores []byte
			required     bool
		)
		if err := rows.Scan(&id, &tmplID, &position, &text, &questionType, &riskWeight, &riskImpact, &optionScores, &required); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}

		question, err := reconstructQuestion(id, tmplID, position, text, questionType, riskWeight, riskImpact, optionScores, required)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

// reconstructQuestion maps raw question columns to the domain model.
func reconstructQuestion(
	id, templateID uuid.UUID,
	position int,
	text, questionType string,
	riskWeight decimal.Decimal,
	riskImpact string,
	optionScores []byte,
	required bool,
) (*model.Question, error) {
	qt, err := valueobject.QuestionTypeFromString(questionType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question type of %s: %w", id, err)
	}

	impact, err := valueobject.RiskImpactFromString(riskImpact)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk impact of %s: %w", id, err)
	}

	var scores map[string]int
	if len(optionScores) > 0 {
		if err := json.Unmarshal(optionScores, &scores); err != nil {
			return nil, fmt.Errorf("failed to parse option scores of %s: %w", id, err)
		}
	}

	return model.ReconstructQuestion(model.QuestionParams{
		ID:           id,
		TemplateID:   templateID,
		Position:     position,
		Text:         text,
		Type:         qt,
		RiskWeight:   riskWeight,
		RiskImpact:   impact,
		OptionScores: scores,
		Required:     required,
	}), nil
}

func derefUUID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
