package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/opengrc/grc/internal/application/dto"
	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/service"
	pkgkafka "github.com/opengrc/grc/pkg/kafka"
)

// Answer event types published by the survey service.
const (
	EventTypeAnswerSubmitted = "survey.answer.submitted"
	EventTypeAnswerUpdated   = "survey.answer.updated"
)

// SurveyScorer recalculates a survey score.
type SurveyScorer interface {
	Execute(ctx context.Context, req dto.CalculateSurveyScoreRequest) (dto.SurveyScoreResponse, error)
}

type answerEvent struct {
	EventType string    `json:"event_type"`
	SurveyID  uuid.UUID `json:"survey_id"`
}

// RetryConfig bounds the exponential backoff applied to failed recalculations.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig retries five times, starting at 200ms and capped at 5s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx)
}

// AnswerEventHandler recalculates the survey score whenever an answer is
// submitted or changed.
type AnswerEventHandler struct {
	scorer SurveyScorer
	retry  RetryConfig
	logger *slog.Logger
}

// NewAnswerEventHandler creates a new AnswerEventHandler.
func NewAnswerEventHandler(scorer SurveyScorer, retry RetryConfig, logger *slog.Logger) *AnswerEventHandler {
	return &AnswerEventHandler{scorer: scorer, retry: retry, logger: logger}
}

// Handle processes one message. Malformed messages, unrelated event types and
// unknown surveys are logged and acknowledged. Other failures are retried with
// backoff; the last error is returned once the retries run out.
func (h *AnswerEventHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var evt answerEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.WarnContext(ctx, "skipping malformed answer event",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}

	eventType := msg.Headers["event_type"]
	if eventType == "" {
		eventType = evt.EventType
	}
	if eventType != EventTypeAnswerSubmitted && eventType != EventTypeAnswerUpdated {
		h.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", eventType))
		return nil
	}

	if evt.SurveyID == uuid.Nil {
		h.logger.WarnContext(ctx, "skipping answer event without survey_id", slog.Int64("offset", msg.Offset))
		return nil
	}

	req := dto.CalculateSurveyScoreRequest{SurveyID: evt.SurveyID}
	attempt := 0
	resp, err := backoff.RetryNotifyWithData(func() (dto.SurveyScoreResponse, error) {
		attempt++
		resp, err := h.scorer.Execute(ctx, req)
		if errors.Is(err, port.ErrNotFound) || errors.Is(err, service.ErrUnsupportedQuestionType) {
			return resp, backoff.Permanent(err)
		}
		return resp, err
	}, h.retry.backOff(ctx), func(err error, next time.Duration) {
		h.logger.WarnContext(ctx, "survey rescore failed, retrying",
			slog.String("survey_id", evt.SurveyID.String()),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", next),
			slog.String("error", err.Error()),
		)
	})
	if errors.Is(err, port.ErrNotFound) {
		h.logger.WarnContext(ctx, "skipping answer event for unknown survey", slog.String("survey_id", evt.SurveyID.String()))
		return nil
	}
	if errors.Is(err, service.ErrUnsupportedQuestionType) {
		h.logger.ErrorContext(ctx, "skipping answer event for unscorable survey",
			slog.String("survey_id", evt.SurveyID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("rescore survey %s after %d attempts: %w", evt.SurveyID, attempt, err)
	}

	h.logger.InfoContext(ctx, "survey rescored",
		slog.String("survey_id", evt.SurveyID.String()),
		slog.String("event_type", eventType),
		slog.Int("risk_score", resp.RiskScore),
		slog.String("risk_rating", resp.RiskRating),
	)
	return nil
}
