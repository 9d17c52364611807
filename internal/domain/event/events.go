package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/pkg/events"
)

const (
	AggregateTypeSurvey = "Survey"
	AggregateTypeVendor = "Vendor"

	// EventTypeSurveyRiskScored is emitted when a survey risk score is recalculated.
	EventTypeSurveyRiskScored = "risk.survey.scored"

	// EventTypeVendorRiskRolledUp is emitted when a vendor takes over its latest survey score.
	EventTypeVendorRiskRolledUp = "risk.vendor.rolled_up"

	// EventTypeVendorRiskEscalated is emitted when a vendor's rating becomes CRITICAL.
	EventTypeVendorRiskEscalated = "risk.vendor.escalated"
)

// SurveyRiskScored is published after a survey score has been persisted.
type SurveyRiskScored struct {
	events.BaseEvent
	SurveyID          uuid.UUID `json:"survey_id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	RiskScore         int       `json:"risk_score"`
	ScoredQuestions   int       `json:"scored_questions"`
	ExcludedQuestions int       `json:"excluded_questions"`
	CalculatedAt      time.Time `json:"calculated_at"`
}

// NewSurveyRiskScored creates a SurveyRiskScored domain event.
func NewSurveyRiskScored(surveyID, vendorID uuid.UUID, score, scored, excluded int, calculatedAt time.Time) SurveyRiskScored {
	return SurveyRiskScored{
		BaseEvent:         events.NewBaseEvent(EventTypeSurveyRiskScored, surveyID, AggregateTypeSurvey),
		SurveyID:          surveyID,
		VendorID:          vendorID,
		RiskScore:         score,
		ScoredQuestions:   scored,
		ExcludedQuestions: excluded,
		CalculatedAt:      calculatedAt,
	}
}

// VendorRiskRolledUp is published when a vendor's score and rating are refreshed from a survey.
type VendorRiskRolledUp struct {
	events.BaseEvent
	VendorID       uuid.UUID `json:"vendor_id"`
	SourceSurveyID uuid.UUID `json:"source_survey_id"`
	RiskScore      int       `json:"risk_score"`
	RiskRating     string    `json:"risk_rating"`
	PreviousRating string    `json:"previous_rating,omitempty"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// NewVendorRiskRolledUp creates a VendorRiskRolledUp domain event.
func NewVendorRiskRolledUp(vendorID, surveyID uuid.UUID, score int, rating, previous string, calculatedAt time.Time) VendorRiskRolledUp {
	return VendorRiskRolledUp{
		BaseEvent:      events.NewBaseEvent(EventTypeVendorRiskRolledUp, vendorID, AggregateTypeVendor),
		VendorID:       vendorID,
		SourceSurveyID: surveyID,
		RiskScore:      score,
		RiskRating:     rating,
		PreviousRating: previous,
		CalculatedAt:   calculatedAt,
	}
}

// VendorRiskEscalated is published when a vendor newly enters the CRITICAL band.
type VendorRiskEscalated struct {
	events.BaseEvent
	VendorID       uuid.UUID `json:"vendor_id"`
	SourceSurveyID uuid.UUID `json:"source_survey_id"`
	RiskScore      int       `json:"risk_score"`
	PreviousRating string    `json:"previous_rating,omitempty"`
}

// NewVendorRiskEscalated creates a VendorRiskEscalated domain event.
func NewVendorRiskEscalated(vendorID, surveyID uuid.UUID, score int, previous string) VendorRiskEscalated {
	return VendorRiskEscalated{
		BaseEvent:      events.NewBaseEvent(EventTypeVendorRiskEscalated, vendorID, AggregateTypeVendor),
		VendorID:       vendorID,
		SourceSurveyID: surveyID,
		RiskScore:      score,
		PreviousRating: previous,
	}
}
