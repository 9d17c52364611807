package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/application/usecase"
	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/domain/valueobject"
	"github.com/opengrc/grc/pkg/auth"
)

var (
	readRoles  = []string{auth.RoleAdmin, auth.RoleRiskAnalyst, auth.RoleVendorManager, auth.RoleAuditor, auth.RoleAPIClient}
	scoreRoles = []string{auth.RoleAdmin, auth.RoleRiskAnalyst, auth.RoleAPIClient}
)

// RolePolicy maps each VendorRiskService method to the roles allowed to call it.
var RolePolicy = map[string][]string{
	MethodCalculateSurveyScore: scoreRoles,
	MethodGetScoreBreakdown:    readRoles,
	MethodRecommendRiskRating:  readRoles,
	MethodRollupVendorScore:    scoreRoles,
	MethodGetVendorRisk:        readRoles,
	MethodReviewAnswer:         {auth.RoleAdmin, auth.RoleRiskAnalyst},
	MethodGetRiskThresholds:    readRoles,
	MethodUpdateRiskThresholds: {auth.RoleAdmin},
}

// Compile-time assertion that VendorRiskHandler implements VendorRiskServiceServer.
var _ VendorRiskServiceServer = (*VendorRiskHandler)(nil)

// UseCases groups the application use cases served over gRPC.
type UseCases struct {
	CalculateSurveyScore *usecase.CalculateSurveyScore
	GetScoreBreakdown    *usecase.GetScoreBreakdown
	RecommendRiskRating  *usecase.RecommendRiskRating
	RollupVendorScore    *usecase.RollupVendorScore
	GetVendorRisk        *usecase.GetVendorRisk
	ReviewAnswer         *usecase.ReviewAnswer
	GetRiskThresholds    *usecase.GetRiskThresholds
	UpdateRiskThresholds *usecase.UpdateRiskThresholds
}

// VendorRiskHandler implements the gRPC VendorRiskServiceServer interface.
type VendorRiskHandler struct {
	UnimplementedVendorRiskServiceServer
	uc     UseCases
	logger *slog.Logger
}

// NewVendorRiskHandler creates a new gRPC handler.
func NewVendorRiskHandler(uc UseCases, logger *slog.Logger) *VendorRiskHandler {
	return &VendorRiskHandler{uc: uc, logger: logger}
}

// CalculateSurveyScore recomputes and stores a survey's risk score.
func (h *VendorRiskHandler) CalculateSurveyScore(ctx context.Context, req *CalculateSurveyScoreRequest) (*CalculateSurveyScoreResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	surveyID, err := parseID("survey_id", req.SurveyID)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.CalculateSurveyScore.Execute(ctx, dto.CalculateSurveyScoreRequest{SurveyID: surveyID})
	if err != nil {
		return nil, h.toStatus("failed to calculate survey score", err, slog.String("survey_id", req.SurveyID))
	}

	h.logger.Info("survey score calculated",
		slog.String("survey_id", req.SurveyID),
		slog.Int("risk_score", result.RiskScore),
		slog.String("risk_rating", result.RiskRating),
	)

	return &CalculateSurveyScoreResponse{Survey: toSurveyScoreMsg(result)}, nil
}

// GetScoreBreakdown returns the per-question contributions to a survey score.
func (h *VendorRiskHandler) GetScoreBreakdown(ctx context.Context, req *GetScoreBreakdownRequest) (*GetScoreBreakdownResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	surveyID, err := parseID("survey_id", req.SurveyID)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetScoreBreakdown.Execute(ctx, dto.GetScoreBreakdownRequest{SurveyID: surveyID})
	if err != nil {
		return nil, h.toStatus("failed to build score breakdown", err, slog.String("survey_id", req.SurveyID))
	}

	lines := make([]BreakdownLineMsg, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, BreakdownLineMsg{
			QuestionID:    l.QuestionID.String(),
			QuestionText:  l.QuestionText,
			QuestionType:  l.QuestionType,
			Weight:        l.Weight,
			Impact:        l.Impact,
			AnswerValue:   l.AnswerValue,
			Score:         int32Ptr(l.Score),
			IsNA:          l.IsNA,
			PendingReview: l.PendingReview,
			WeightedScore: l.WeightedScore,
		})
	}

	return &GetScoreBreakdownResponse{
		SurveyID:        result.SurveyID.String(),
		RiskScore:       int32(result.RiskScore),
		StoredRiskScore: int32Ptr(result.StoredRiskScore),
		CalculatedAt:    result.CalculatedAt,
		TotalWeight:     result.TotalWeight,
		Lines:           lines,
	}, nil
}

// RecommendRiskRating classifies a score against the configured thresholds.
func (h *VendorRiskHandler) RecommendRiskRating(ctx context.Context, req *RecommendRiskRatingRequest) (*RecommendRiskRatingResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var score *int
	if req.Score != nil {
		s := int(*req.Score)
		score = &s
	}

	result, err := h.uc.RecommendRiskRating.Execute(ctx, dto.RecommendRiskRatingRequest{Score: score})
	if err != nil {
		return nil, h.toStatus("failed to recommend risk rating", err)
	}

	return &RecommendRiskRatingResponse{
		Score:      req.Score,
		RiskRating: result.RiskRating,
		Thresholds: toThresholdsMsg(result.Thresholds),
	}, nil
}

// RollupVendorScore recomputes a vendor's score from its latest scored survey.
func (h *VendorRiskHandler) RollupVendorScore(ctx context.Context, req *RollupVendorScoreRequest) (*RollupVendorScoreResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	vendorID, err := parseID("vendor_id", req.VendorID)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.RollupVendorScore.Execute(ctx, dto.RollupVendorScoreRequest{VendorID: vendorID})
	if err != nil {
		return nil, h.toStatus("failed to roll up vendor score", err, slog.String("vendor_id", req.VendorID))
	}

	h.logger.Info("vendor score rolled up",
		slog.String("vendor_id", req.VendorID),
		slog.Int("risk_score", result.RiskScore),
		slog.Bool("updated", result.Updated),
	)

	return &RollupVendorScoreResponse{Rollup: toVendorRollupMsg(result)}, nil
}

// GetVendorRisk returns a vendor's current risk state.
func (h *VendorRiskHandler) GetVendorRisk(ctx context.Context, req *GetVendorRiskRequest) (*GetVendorRiskResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	vendorID, err := parseID("vendor_id", req.VendorID)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetVendorRisk.Execute(ctx, dto.GetVendorRiskRequest{VendorID: vendorID})
	if err != nil {
		return nil, h.toStatus("failed to get vendor risk", err, slog.String("vendor_id", req.VendorID))
	}

	return &GetVendorRiskResponse{
		VendorID:     result.VendorID.String(),
		Name:         result.Name,
		RiskScore:    int32Ptr(result.RiskScore),
		RiskRating:   result.RiskRating,
		CalculatedAt: result.CalculatedAt,
	}, nil
}

// ReviewAnswer records a manual score for a free-text answer.
func (h *VendorRiskHandler) ReviewAnswer(ctx context.Context, req *ReviewAnswerRequest) (*ReviewAnswerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	answerID, err := parseID("answer_id", req.AnswerID)
	if err != nil {
		return nil, err
	}
	reviewerID, err := callerID(ctx, "reviewer_id", req.ReviewerID)
	if err != nil {
		return nil, err
	}

	var score *int
	if req.Score != nil {
		s := int(*req.Score)
		score = &s
	}

	result, err := h.uc.ReviewAnswer.Execute(ctx, dto.ReviewAnswerRequest{
		AnswerID:   answerID,
		ReviewerID: reviewerID,
		Decision:   req.Decision,
		Score:      score,
	})
	if err != nil {
		return nil, h.toStatus("failed to review answer", err, slog.String("answer_id", req.AnswerID))
	}

	h.logger.Info("answer reviewed",
		slog.String("answer_id", req.AnswerID),
		slog.String("reviewer_id", reviewerID.String()),
		slog.String("manual_score", result.ManualScore),
	)

	return &ReviewAnswerResponse{
		AnswerID:    result.AnswerID.String(),
		ManualScore: result.ManualScore,
		Survey:      toSurveyScoreMsg(result.Survey),
	}, nil
}

// GetRiskThresholds returns the thresholds in effect.
func (h *VendorRiskHandler) GetRiskThresholds(ctx context.Context, _ *GetRiskThresholdsRequest) (*RiskThresholdsResponse, error) {
	result, err := h.uc.GetRiskThresholds.Execute(ctx)
	if err != nil {
		return nil, h.toStatus("failed to get risk thresholds", err)
	}
	return &RiskThresholdsResponse{
		Thresholds: toThresholdsMsg(result.Thresholds),
		Configured: result.Configured,
	}, nil
}

// UpdateRiskThresholds validates and stores new thresholds.
func (h *VendorRiskHandler) UpdateRiskThresholds(ctx context.Context, req *UpdateRiskThresholdsRequest) (*RiskThresholdsResponse, error) {
	if req == nil || req.Thresholds == nil {
		return nil, status.Error(codes.InvalidArgument, "thresholds are required")
	}
	updatedBy, err := callerID(ctx, "updated_by", req.UpdatedBy)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.UpdateRiskThresholds.Execute(ctx, dto.UpdateRiskThresholdsRequest{
		Thresholds: dto.Thresholds{
			VeryLow: int(req.Thresholds.VeryLow),
			Low:     int(req.Thresholds.Low),
			Medium:  int(req.Thresholds.Medium),
			High:    int(req.Thresholds.High),
		},
		UpdatedBy: updatedBy,
	})
	if err != nil {
		return nil, h.toStatus("failed to update risk thresholds", err)
	}

	h.logger.Info("risk thresholds updated",
		slog.String("updated_by", updatedBy.String()),
		slog.Int("very_low", result.VeryLow),
		slog.Int("low", result.Low),
		slog.Int("medium", result.Medium),
		slog.Int("high", result.High),
	)

	return &RiskThresholdsResponse{
		Thresholds: toThresholdsMsg(result.Thresholds),
		Configured: result.Configured,
	}, nil
}

// toStatus maps a use case error to a gRPC status. Internal errors are
// logged here and their detail is not returned to the caller.
func (h *VendorRiskHandler) toStatus(msg string, err error, attrs ...any) error {
	code := codeFor(err)
	if code == codes.Internal {
		h.logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
		return status.Error(codes.Internal, "internal error")
	}
	h.logger.Warn(msg, append(attrs, slog.String("error", err.Error()), slog.String("code", code.String()))...)
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, port.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, valueobject.ErrInvalidThresholds),
		errors.Is(err, valueobject.ErrManualScoreOutOfRange):
		return codes.InvalidArgument
	case errors.Is(err, service.ErrUnsupportedQuestionType),
		errors.Is(err, model.ErrNotReviewable):
		return codes.FailedPrecondition
	case errors.Is(err, port.ErrVersionConflict):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return id, nil
}

// callerID returns the authenticated user's ID, or the ID supplied in the
// request when the server runs without authentication.
func callerID(ctx context.Context, field, fallback string) (uuid.UUID, error) {
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		if claims.UserID == uuid.Nil {
			return uuid.Nil, status.Error(codes.Unauthenticated, "token has no user_id")
		}
		return claims.UserID, nil
	}
	if fallback == "" {
		return uuid.Nil, status.Errorf(codes.Unauthenticated, "authentication or %s required", field)
	}
	return parseID(field, fallback)
}

func toSurveyScoreMsg(r dto.SurveyScoreResponse) *SurveyScoreMsg {
	msg := &SurveyScoreMsg{
		SurveyID:          r.SurveyID.String(),
		VendorID:          r.VendorID.String(),
		RiskScore:         int32(r.RiskScore),
		RiskRating:        r.RiskRating,
		ScoredQuestions:   int32(r.ScoredQuestions),
		ExcludedQuestions: int32(r.ExcludedQuestions),
		CalculatedAt:      r.CalculatedAt,
	}
	if r.VendorRollup != nil {
		msg.VendorRollup = toVendorRollupMsg(*r.VendorRollup)
	}
	return msg
}

func toVendorRollupMsg(r dto.RollupVendorScoreResponse) *VendorRollupMsg {
	msg := &VendorRollupMsg{
		VendorID:     r.VendorID.String(),
		RiskScore:    int32(r.RiskScore),
		RiskRating:   r.RiskRating,
		Updated:      r.Updated,
		CalculatedAt: r.CalculatedAt,
	}
	if r.SourceSurveyID != uuid.Nil {
		msg.SourceSurveyID = r.SourceSurveyID.String()
	}
	return msg
}

func toThresholdsMsg(t dto.Thresholds) *ThresholdsMsg {
	return &ThresholdsMsg{
		VeryLow: int32(t.VeryLow),
		Low:     int32(t.Low),
		Medium:  int32(t.Medium),
		High:    int32(t.High),
	}
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
