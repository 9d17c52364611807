package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
	pgutil "github.com/opengrc/grc/pkg/postgres"
)

// ThresholdsRepository implements port.ThresholdsRepository on the
// single-row risk_settings table.
type ThresholdsRepository struct {
	pool *pgxpool.Pool
}

// NewThresholdsRepository creates a new PostgreSQL-backed ThresholdsRepository.
func NewThresholdsRepository(pool *pgxpool.Pool) *ThresholdsRepository {
	return &ThresholdsRepository{pool: pool}
}

// Get returns the stored thresholds or port.ErrNotFound.
func (r *ThresholdsRepository) Get(ctx context.Context) (valueobject.RiskThresholds, error) {
	var veryLow, low, medium, high int
	err := r.pool.QueryRow(ctx, `SELECT very_low, low, medium, high FROM risk_settings WHERE id = 1`).
		Scan(&veryLow, &low, &medium, &high)
	if err != nil {
		if pgutil.IsNoRows(err) {
			return valueobject.RiskThresholds{}, fmt.Errorf("risk settings: %w", port.ErrNotFound)
		}
		return valueobject.RiskThresholds{}, fmt.Errorf("failed to query risk settings: %w", err)
	}
	return valueobject.ReconstructRiskThresholds(veryLow, low, medium, high), nil
}

// Save upserts the thresholds row.
func (r *ThresholdsRepository) Save(ctx context.Context, thresholds valueobject.RiskThresholds, updatedBy uuid.UUID) error {
	const upsertSQL = `
		INSERT INTO risk_settings (id, very_low, low, medium, high, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			very_low = EXCLUDED.very_low,
			low = EXCLUDED.low,
			medium = EXCLUDED.medium,
			high = EXCLUDED.high,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, upsertSQL,
		thresholds.VeryLow(), thresholds.Low(), thresholds.Medium(), thresholds.High(), updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save risk settings: %w", err)
	}
	return nil
}
