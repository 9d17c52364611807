package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// CalculateSurveyScoreRequest is the input DTO for the CalculateSurveyScore use case.
type CalculateSurveyScoreRequest struct {
	SurveyID uuid.UUID `json:"survey_id"`
}

// SurveyScoreResponse is the output DTO returned after a survey is scored.
type SurveyScoreResponse struct {
	CalculatedAt      time.Time                  `json:"calculated_at"`
	VendorRollup      *RollupVendorScoreResponse `json:"vendor_rollup,omitempty"`
	RiskRating        string                     `json:"risk_rating"`
	RiskScore         int                        `json:"risk_score"`
	ScoredQuestions   int                        `json:"scored_questions"`
	ExcludedQuestions int                        `json:"excluded_questions"`
	SurveyID          uuid.UUID                  `json:"survey_id"`
	VendorID          uuid.UUID                  `json:"vendor_id"`
}

// GetScoreBreakdownRequest is the input DTO for the GetScoreBreakdown use case.
type GetScoreBreakdownRequest struct {
	SurveyID uuid.UUID `json:"survey_id"`
}

// BreakdownLine shows how one weighted question contributed to the score.
type BreakdownLine struct {
	Score         *int            `json:"score"`
	QuestionText  string          `json:"question_text"`
	QuestionType  string          `json:"question_type"`
	Weight        string          `json:"weight"`
	Impact        string          `json:"impact"`
	WeightedScore string          `json:"weighted_score"`
	AnswerValue   json.RawMessage `json:"answer_value"`
	IsNA          bool            `json:"is_na"`
	PendingReview bool            `json:"pending_review"`
	QuestionID    uuid.UUID       `json:"question_id"`
}

// ScoreBreakdownResponse is the diagnostic view of a survey score.
type ScoreBreakdownResponse struct {
	StoredRiskScore *int            `json:"stored_risk_score"`
	CalculatedAt    *time.Time      `json:"calculated_at"`
	TotalWeight     string          `json:"total_weight"`
	Lines           []BreakdownLine `json:"lines"`
	RiskScore       int             `json:"risk_score"`
	SurveyID        uuid.UUID       `json:"survey_id"`
}

// RecommendRiskRatingRequest is the input DTO for the RecommendRiskRating use case.
// A nil score means the vendor was never assessed.
type RecommendRiskRatingRequest struct {
	Score *int `json:"score"`
}

// RiskRatingResponse is the rating recommended for a score.
type RiskRatingResponse struct {
	Score      *int       `json:"score"`
	RiskRating string     `json:"risk_rating"`
	Thresholds Thresholds `json:"thresholds"`
}

// RollupVendorScoreRequest is the input DTO for the RollupVendorScore use case.
type RollupVendorScoreRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

// RollupVendorScoreResponse is the vendor risk after a rollup. Updated is
// false when the vendor had no scored survey and nothing was written.
type RollupVendorScoreResponse struct {
	CalculatedAt   *time.Time `json:"calculated_at"`
	RiskRating     string     `json:"risk_rating"`
	RiskScore      int        `json:"risk_score"`
	Updated        bool       `json:"updated"`
	VendorID       uuid.UUID  `json:"vendor_id"`
	SourceSurveyID uuid.UUID  `json:"source_survey_id"`
}

// GetVendorRiskRequest is the input DTO for the GetVendorRisk use case.
type GetVendorRiskRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

// VendorRiskResponse is the current risk state of a vendor.
type VendorRiskResponse struct {
	RiskScore    *int       `json:"risk_score"`
	CalculatedAt *time.Time `json:"calculated_at"`
	Name         string     `json:"name"`
	RiskRating   string     `json:"risk_rating"`
	VendorID     uuid.UUID  `json:"vendor_id"`
}

// Review decisions accepted by ReviewAnswer.
const (
	ReviewDecisionScored        = "SCORED"
	ReviewDecisionNotApplicable = "NOT_APPLICABLE"
	ReviewDecisionPending       = "PENDING"
)

// ReviewAnswerRequest is the input DTO for the ReviewAnswer use case.
// Score is required when Decision is SCORED.
type ReviewAnswerRequest struct {
	Score      *int      `json:"score"`
	Decision   string    `json:"decision"`
	AnswerID   uuid.UUID `json:"answer_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
}

// ReviewAnswerResponse is returned after a review is stored and the survey rescored.
type ReviewAnswerResponse struct {
	ManualScore string              `json:"manual_score"`
	Survey      SurveyScoreResponse `json:"survey"`
	AnswerID    uuid.UUID           `json:"answer_id"`
}

// Thresholds carries the four rating boundaries.
type Thresholds struct {
	VeryLow int `json:"very_low"`
	Low     int `json:"low"`
	Medium  int `json:"medium"`
	High    int `json:"high"`
}

// UpdateRiskThresholdsRequest is the input DTO for the UpdateRiskThresholds use case.
type UpdateRiskThresholdsRequest struct {
	Thresholds
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// RiskThresholdsResponse is the thresholds in effect. Configured is false
// when the service defaults apply.
type RiskThresholdsResponse struct {
	Thresholds
	Configured bool `json:"configured"`
}

// FromThresholds maps the value object to its DTO.
func FromThresholds(t valueobject.RiskThresholds) Thresholds {
	return Thresholds{VeryLow: t.VeryLow(), Low: t.Low(), Medium: t.Medium(), High: t.High()}
}

// FromVendor maps a vendor to its risk response.
func FromVendor(v *model.Vendor) VendorRiskResponse {
	return VendorRiskResponse{
		VendorID:     v.ID(),
		Name:         v.Name(),
		RiskScore:    v.RiskScore(),
		RiskRating:   v.RiskRating().String(),
		CalculatedAt: v.RiskScoreCalculatedAt(),
	}
}

// FromBreakdownLine maps an aggregator line to its DTO.
func FromBreakdownLine(l service.BreakdownLine) BreakdownLine {
	line := BreakdownLine{
		QuestionID:    l.Question.ID(),
		QuestionText:  l.Question.Text(),
		QuestionType:  l.Question.Type().String(),
		Weight:        l.Question.RiskWeight().String(),
		Impact:        l.Question.RiskImpact().String(),
		AnswerValue:   json.RawMessage("null"),
		IsNA:          !l.Score.IsApplicable(),
		PendingReview: l.Score.IsPendingReview(),
		WeightedScore: l.WeightedScore().String(),
	}
	if l.Answer != nil {
		line.AnswerValue = l.Answer.Value().Raw()
	}
	if l.Score.IsApplicable() {
		score := l.Score.Value()
		line.Score = &score
	}
	return line
}
