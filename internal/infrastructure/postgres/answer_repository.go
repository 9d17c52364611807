package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
	pgutil "github.com/opengrc/grc/pkg/postgres"
)

// AnswerRepository implements port.AnswerRepository using PostgreSQL.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new PostgreSQL-backed AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// FindByID retrieves an answer by its unique identifier.
func (r *AnswerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	answers, err := loadAnswers(ctx, r.pool, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("answer %s: %w", id, port.ErrNotFound)
	}
	return answers[0], nil
}

// SaveReview writes the manual score and reviewer of an answer.
func (r *AnswerRepository) SaveReview(ctx context.Context, answer *model.Answer) error {
	const updateSQL = `
		UPDATE answers SET
			manual_score = $2,
			manual_score_na = $3,
			reviewed_by = $4,
			reviewed_at = $5,
			updated_at = $6
		WHERE id = $1
	`

	score, notApplicable := answer.ManualScore().Columns()
	var reviewedBy *uuid.UUID
	if answer.ReviewedBy() != uuid.Nil {
		id := answer.ReviewedBy()
		reviewedBy = &id
	}

	result, err := r.pool.Exec(ctx, updateSQL,
		answer.ID(),
		score,
		notApplicable,
		reviewedBy,
		answer.ReviewedAt(),
		answer.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save answer review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("answer %s: %w", answer.ID(), port.ErrNotFound)
	}
	return nil
}

func loadAnswers(ctx context.Context, q pgutil.Querier, where string, args ...any) ([]*model.Answer, error) {
	rows, err := q.Query(ctx, `
		SELECT id, survey_id, question_id, value, manual_score, manual_score_na, reviewed_by, reviewed_at, updated_at
		FROM answers `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []*model.Answer
	for rows.Next() {
		var (
			id, surveyID, questionID uuid.UUID
			value                    []byte
			manualScore              *int
			manualScoreNA            bool
			reviewedBy               *uuid.UUID
			reviewedAt               *time.Time
			updatedAt                time.Time
		)
		if err := rows.Scan(&id, &surveyID, &questionID, &value, &manualScore, &manualScoreNA, &reviewedBy, &reviewedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer row: %w", err)
		}

		answer, err := reconstructAnswer(id, surveyID, questionID, value, manualScore, manualScoreNA, reviewedBy, reviewedAt, updatedAt)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}

	return answers, nil
}

// reconstructAnswer maps raw answer columns to the domain model.
func reconstructAnswer(
	id, surveyID, questionID uuid.UUID,
	value []byte,
	manualScore *int,
	manualScoreNA bool,
	reviewedBy *uuid.UUID,
	reviewedAt *time.Time,
	updatedAt time.Time,
) (*model.Answer, error) {
	av, err := valueobject.NewAnswerValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse value of answer %s: %w", id, err)
	}

	return model.ReconstructAnswer(
		id, surveyID, questionID, av,
		valueobject.ManualScoreFromColumns(manualScore, manualScoreNA),
		derefUUID(reviewedBy), reviewedAt, updatedAt,
	), nil
}
