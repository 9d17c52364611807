package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an optimistic version check fails.
	ErrVersionConflict = errors.New("version conflict")
)

// SurveyRepository defines the persistence port for surveys.
type SurveyRepository interface {
	// FindByID loads a survey with its template questions and answers.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Survey, error)

	// ListByVendor loads the score fields of every survey of a vendor.
	// Questions and answers are not loaded.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*model.Survey, error)

	// SaveRiskScore persists the survey score, timestamp and version together
	// with its pending domain events. Returns ErrVersionConflict when the
	// stored version moved on since the survey was loaded.
	SaveRiskScore(ctx context.Context, survey *model.Survey) error
}

// VendorRepository defines the persistence port for vendors.
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)

	// SaveRiskRollup persists the vendor risk fields with its pending domain
	// events, under the same optimistic version check as surveys.
	SaveRiskRollup(ctx context.Context, vendor *model.Vendor) error
}

// AnswerRepository defines the persistence port for answers.
type AnswerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Answer, error)

	// SaveReview persists the manual score and reviewer of an answer.
	SaveReview(ctx context.Context, answer *model.Answer) error
}

// ThresholdsRepository defines the persistence port for rating thresholds.
type ThresholdsRepository interface {
	// Get returns the stored thresholds, or ErrNotFound when none are configured.
	Get(ctx context.Context) (valueobject.RiskThresholds, error)

	Save(ctx context.Context, thresholds valueobject.RiskThresholds, updatedBy uuid.UUID) error
}

// ScoringMetrics records scoring outcomes for observability.
type ScoringMetrics interface {
	SurveyScored(ctx context.Context, score int)
	VendorRolledUp(ctx context.Context, rating valueobject.RiskRating)
	CalculationFailed(ctx context.Context, reason string)
}
