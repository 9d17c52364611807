package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/domain/event"
	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/pkg/events"
)

// Vendor is the aggregate root for a third party under risk management.
// Its risk fields are derived from the latest scored survey.
type Vendor struct {
	events.EventCollector
	calculatedAt *time.Time
	riskScore    *int
	riskRating   valueobject.RiskRating
	name         string
	version      int
	id           uuid.UUID
}

// ReconstructVendor rebuilds a Vendor from persisted data (no validation, no events).
// An unset rating defaults to VERY_LOW.
func ReconstructVendor(
	id uuid.UUID,
	name string,
	riskScore *int,
	riskRating valueobject.RiskRating,
	calculatedAt *time.Time,
	version int,
) *Vendor {
	if riskRating.IsZero() {
		riskRating = valueobject.RiskRatingVeryLow
	}
	return &Vendor{
		id:           id,
		name:         name,
		riskScore:    riskScore,
		riskRating:   riskRating,
		calculatedAt: calculatedAt,
		version:      version,
	}
}

// ApplyRollup takes over the score of the vendor's latest scored survey.
// It records VendorRiskRolledUp, plus VendorRiskEscalated when the rating
// newly becomes CRITICAL.
func (v *Vendor) ApplyRollup(surveyID uuid.UUID, score int, rating valueobject.RiskRating, calculatedAt time.Time) error {
	if rating.IsZero() {
		return errors.New("risk rating is required")
	}

	previous := v.riskRating
	previousName := ""
	if v.riskScore != nil {
		previousName = previous.String()
	}

	calculatedAt = calculatedAt.UTC()
	v.riskScore = &score
	v.riskRating = rating
	v.calculatedAt = &calculatedAt
	v.version++

	v.Record(event.NewVendorRiskRolledUp(v.id, surveyID, score, rating.String(), previousName, calculatedAt))
	if rating.Equal(valueobject.RiskRatingCritical) && !previous.Equal(valueobject.RiskRatingCritical) {
		v.Record(event.NewVendorRiskEscalated(v.id, surveyID, score, previousName))
	}
	return nil
}

// --- Accessors ---

func (v *Vendor) ID() uuid.UUID                      { return v.id }
func (v *Vendor) Name() string                       { return v.name }
func (v *Vendor) RiskScore() *int                    { return v.riskScore }
func (v *Vendor) RiskRating() valueobject.RiskRating { return v.riskRating }
func (v *Vendor) RiskScoreCalculatedAt() *time.Time  { return v.calculatedAt }
func (v *Vendor) Version() int                       { return v.version }

// DomainEvents returns all accumulated domain events and clears them.
func (v *Vendor) DomainEvents() []events.DomainEvent {
	return v.ClearEvents()
}
