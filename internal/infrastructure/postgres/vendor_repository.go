package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
	pgutil "github.com/opengrc/grc/pkg/postgres"
)

// VendorRepository implements port.VendorRepository using PostgreSQL.
type VendorRepository struct {
	pool *pgxpool.Pool
}

// NewVendorRepository creates a new PostgreSQL-backed VendorRepository.
func NewVendorRepository(pool *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{pool: pool}
}

// FindByID retrieves a vendor by its unique identifier.
func (r *VendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	const query = `
		SELECT id, name, risk_score, risk_rating, risk_score_calculated_at, version
		FROM vendors
		WHERE id = $1
	`

	var (
		vendorID     uuid.UUID
		name         string
		riskScore    *int
		riskRating   string
		calculatedAt *time.Time
		version      int
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&vendorID, &name, &riskScore, &riskRating, &calculatedAt, &version)
	if err != nil {
		if pgutil.IsNoRows(err) {
			return nil, fmt.Errorf("vendor %s: %w", id, port.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query vendor: %w", err)
	}

	return reconstructVendor(vendorID, name, riskScore, riskRating, calculatedAt, version)
}

// SaveRiskRollup writes the vendor risk fields with optimistic concurrency
// control and stores its domain events in the outbox within the same transaction.
func (r *VendorRepository) SaveRiskRollup(ctx context.Context, vendor *model.Vendor) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		const updateSQL = `
			UPDATE vendors SET
				risk_score = $2,
				risk_rating = $3,
				risk_score_calculated_at = $4,
				version = $5,
				updated_at = NOW()
			WHERE id = $1 AND version = $5 - 1
		`

		result, err := tx.Exec(ctx, updateSQL,
			vendor.ID(),
			vendor.RiskScore(),
			vendor.RiskRating().String(),
			vendor.RiskScoreCalculatedAt(),
			vendor.Version(),
		)
		if err != nil {
			return fmt.Errorf("failed to update vendor risk: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("vendor %s has been modified: %w", vendor.ID(), port.ErrVersionConflict)
		}

		return insertOutbox(ctx, tx, vendor.DomainEvents())
	})
}

// reconstructVendor maps raw vendor columns to the domain model.
func reconstructVendor(
	id uuid.UUID,
	name string,
	riskScore *int,
	riskRating string,
	calculatedAt *time.Time,
	version int,
) (*model.Vendor, error) {
	rating, err := valueobject.RiskRatingFromString(riskRating)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk rating of vendor %s: %w", id, err)
	}
	return model.ReconstructVendor(id, name, riskScore, rating, calculatedAt, version), nil
}
