package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/opengrc/grc/internal/domain/valueobject"
)

// ScoringMetrics implements port.ScoringMetrics with OpenTelemetry instruments.
type ScoringMetrics struct {
	scoresCalculated metric.Int64Counter
	surveyScore      metric.Int64Histogram
	vendorRollups    metric.Int64Counter
	failures         metric.Int64Counter
}

// NewScoringMetrics registers the scoring instruments on meter.
func NewScoringMetrics(meter metric.Meter) (*ScoringMetrics, error) {
	scoresCalculated, err := meter.Int64Counter("risk_survey_scores_calculated_total",
		metric.WithDescription("Survey risk scores calculated and stored."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create scores counter: %w", err)
	}

	surveyScore, err := meter.Int64Histogram("risk_survey_score",
		metric.WithDescription("Distribution of calculated survey risk scores."),
		metric.WithExplicitBucketBoundaries(0, 20, 40, 60, 80, 100))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create score histogram: %w", err)
	}

	vendorRollups, err := meter.Int64Counter("risk_vendor_rollups_total",
		metric.WithDescription("Vendor risk rollups by resulting rating."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create rollups counter: %w", err)
	}

	failures, err := meter.Int64Counter("risk_score_calculation_failures_total",
		metric.WithDescription("Failed score calculations by reason."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create failures counter: %w", err)
	}

	return &ScoringMetrics{
		scoresCalculated: scoresCalculated,
		surveyScore:      surveyScore,
		vendorRollups:    vendorRollups,
		failures:         failures,
	}, nil
}

// SurveyScored records a stored survey score.
func (m *ScoringMetrics) SurveyScored(ctx context.Context, score int) {
	m.scoresCalculated.Add(ctx, 1)
	m.surveyScore.Record(ctx, int64(score))
}

// VendorRolledUp records a vendor rollup.
func (m *ScoringMetrics) VendorRolledUp(ctx context.Context, rating valueobject.RiskRating) {
	m.vendorRollups.Add(ctx, 1, metric.WithAttributes(attribute.String("rating", rating.String())))
}

// CalculationFailed records a failed calculation.
func (m *ScoringMetrics) CalculationFailed(ctx context.Context, reason string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
