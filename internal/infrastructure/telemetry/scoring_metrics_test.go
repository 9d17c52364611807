package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/opengrc/grc/internal/domain/valueobject"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestScoringMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewScoringMetrics(provider.Meter("risk-test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.SurveyScored(ctx, 42)
	m.SurveyScored(ctx, 85)
	m.VendorRolledUp(ctx, valueobject.RiskRatingCritical)
	m.CalculationFailed(ctx, "scoring")

	data := collect(t, reader)

	scores, ok := data["risk_survey_scores_calculated_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, scores.DataPoints, 1)
	assert.Equal(t, int64(2), scores.DataPoints[0].Value)

	hist, ok := data["risk_survey_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(127), hist.DataPoints[0].Sum)

	rollups, ok := data["risk_vendor_rollups_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rollups.DataPoints, 1)
	rating, found := rollups.DataPoints[0].Attributes.Value(attribute.Key("rating"))
	require.True(t, found)
	assert.Equal(t, "CRITICAL", rating.AsString())

	failures, ok := data["risk_score_calculation_failures_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), failures.DataPoints[0].Value)
}
