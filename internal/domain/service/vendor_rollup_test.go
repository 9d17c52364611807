package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/service"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

func TestVendorRollup_SelectsLatest(t *testing.T) {
	vendorID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := scoredSurvey(vendorID, 90, base)
	newer := scoredSurvey(vendorID, 30, base.Add(48*time.Hour))
	unscored := model.ReconstructSurvey(uuid.New(), vendorID, uuid.New(), "", nil, nil, nil, nil, 1)

	result := service.NewVendorRollup().Rollup(
		[]*model.Survey{newer, unscored, older},
		service.NewRatingClassifier(valueobject.DefaultRiskThresholds()),
	)

	require.NotNil(t, result.Source)
	assert.Equal(t, newer.ID(), result.Source.ID())
	assert.Equal(t, 30, result.Score, "latest wins, no averaging")
	assert.Equal(t, valueobject.RiskRatingLow, result.Rating)
	assert.Equal(t, base.Add(48*time.Hour), *result.CalculatedAt)
}

func TestVendorRollup_NoScoredSurveys(t *testing.T) {
	unscored := model.ReconstructSurvey(uuid.New(), uuid.New(), uuid.New(), "", nil, nil, nil, nil, 1)

	result := service.NewVendorRollup().Rollup(
		[]*model.Survey{unscored},
		service.NewRatingClassifier(valueobject.DefaultRiskThresholds()),
	)

	assert.Nil(t, result.Source)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, valueobject.RiskRatingVeryLow, result.Rating)
	assert.Nil(t, result.CalculatedAt)

	assert.Nil(t, service.NewVendorRollup().Latest(nil))
}

func TestVendorRollup_TieIsOrderIndependent(t *testing.T) {
	vendorID := uuid.New()
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	a := scoredSurvey(vendorID, 10, at)
	b := scoredSurvey(vendorID, 90, at)

	rollup := service.NewVendorRollup()
	assert.Equal(t, rollup.Latest([]*model.Survey{a, b}).ID(), rollup.Latest([]*model.Survey{b, a}).ID())
}
