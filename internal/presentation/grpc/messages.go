package grpc

import (
	"encoding/json"
	"time"
)

// Proto-aligned request/response message types.

// CalculateSurveyScoreRequest represents the proto CalculateSurveyScoreRequest message.
type CalculateSurveyScoreRequest struct {
	SurveyID string `json:"survey_id"`
}

// SurveyScoreMsg represents the proto SurveyScore message.
type SurveyScoreMsg struct {
	CalculatedAt      time.Time        `json:"calculated_at"`
	VendorRollup      *VendorRollupMsg `json:"vendor_rollup,omitempty"`
	SurveyID          string           `json:"survey_id"`
	VendorID          string           `json:"vendor_id"`
	RiskRating        string           `json:"risk_rating"`
	RiskScore         int32            `json:"risk_score"`
	ScoredQuestions   int32            `json:"scored_questions"`
	ExcludedQuestions int32            `json:"excluded_questions"`
}

// CalculateSurveyScoreResponse represents the proto CalculateSurveyScoreResponse message.
type CalculateSurveyScoreResponse struct {
	Survey *SurveyScoreMsg `json:"survey"`
}

// GetScoreBreakdownRequest represents the proto GetScoreBreakdownRequest message.
type GetScoreBreakdownRequest struct {
	SurveyID string `json:"survey_id"`
}

// BreakdownLineMsg represents the proto BreakdownLine message.
type BreakdownLineMsg struct {
	Score         *int32          `json:"score"`
	AnswerValue   json.RawMessage `json:"answer_value"`
	QuestionID    string          `json:"question_id"`
	QuestionText  string          `json:"question_text"`
	QuestionType  string          `json:"question_type"`
	Weight        string          `json:"weight"`
	Impact        string          `json:"impact"`
	WeightedScore string          `json:"weighted_score"`
	IsNA          bool            `json:"is_na"`
	PendingReview bool            `json:"pending_review"`
}

// GetScoreBreakdownResponse represents the proto GetScoreBreakdownResponse message.
type GetScoreBreakdownResponse struct {
	StoredRiskScore *int32             `json:"stored_risk_score"`
	CalculatedAt    *time.Time         `json:"calculated_at"`
	SurveyID        string             `json:"survey_id"`
	TotalWeight     string             `json:"total_weight"`
	Lines           []BreakdownLineMsg `json:"lines"`
	RiskScore       int32              `json:"risk_score"`
}

// RecommendRiskRatingRequest represents the proto RecommendRiskRatingRequest message.
// A missing score means the vendor was never assessed.
type RecommendRiskRatingRequest struct {
	Score *int32 `json:"score"`
}

// ThresholdsMsg represents the proto RiskThresholds message.
type ThresholdsMsg struct {
	VeryLow int32 `json:"very_low"`
	Low     int32 `json:"low"`
	Medium  int32 `json:"medium"`
	High    int32 `json:"high"`
}

// RecommendRiskRatingResponse represents the proto RecommendRiskRatingResponse message.
type RecommendRiskRatingResponse struct {
	Score      *int32         `json:"score"`
	Thresholds *ThresholdsMsg `json:"thresholds"`
	RiskRating string         `json:"risk_rating"`
}

// RollupVendorScoreRequest represents the proto RollupVendorScoreRequest message.
type RollupVendorScoreRequest struct {
	VendorID string `json:"vendor_id"`
}

// VendorRollupMsg represents the proto VendorRollup message.
type VendorRollupMsg struct {
	CalculatedAt   *time.Time `json:"calculated_at"`
	VendorID       string     `json:"vendor_id"`
	SourceSurveyID string     `json:"source_survey_id,omitempty"`
	RiskRating     string     `json:"risk_rating"`
	RiskScore      int32      `json:"risk_score"`
	Updated        bool       `json:"updated"`
}

// RollupVendorScoreResponse represents the proto RollupVendorScoreResponse message.
type RollupVendorScoreResponse struct {
	Rollup *VendorRollupMsg `json:"rollup"`
}

// GetVendorRiskRequest represents the proto GetVendorRiskRequest message.
type GetVendorRiskRequest struct {
	VendorID string `json:"vendor_id"`
}

// GetVendorRiskResponse represents the proto GetVendorRiskResponse message.
type GetVendorRiskResponse struct {
	RiskScore    *int32     `json:"risk_score"`
	CalculatedAt *time.Time `json:"calculated_at"`
	VendorID     string     `json:"vendor_id"`
	Name         string     `json:"name"`
	RiskRating   string     `json:"risk_rating"`
}

// ReviewAnswerRequest represents the proto ReviewAnswerRequest message.
// ReviewerID is only read when the call is unauthenticated; otherwise the
// caller's user ID is used.
type ReviewAnswerRequest struct {
	Score      *int32 `json:"score"`
	AnswerID   string `json:"answer_id"`
	Decision   string `json:"decision"`
	ReviewerID string `json:"reviewer_id,omitempty"`
}

// ReviewAnswerResponse represents the proto ReviewAnswerResponse message.
type ReviewAnswerResponse struct {
	Survey      *SurveyScoreMsg `json:"survey"`
	AnswerID    string          `json:"answer_id"`
	ManualScore string          `json:"manual_score"`
}

// GetRiskThresholdsRequest represents the proto GetRiskThresholdsRequest message.
type GetRiskThresholdsRequest struct{}

// UpdateRiskThresholdsRequest represents the proto UpdateRiskThresholdsRequest message.
type UpdateRiskThresholdsRequest struct {
	Thresholds *ThresholdsMsg `json:"thresholds"`
	UpdatedBy  string         `json:"updated_by,omitempty"`
}

// RiskThresholdsResponse represents the proto RiskThresholdsResponse message.
type RiskThresholdsResponse struct {
	Thresholds *ThresholdsMsg `json:"thresholds"`
	Configured bool           `json:"configured"`
}
