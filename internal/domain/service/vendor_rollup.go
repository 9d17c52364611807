package service

import (
	"time"

	"github.com/opengrc/grc/internal/domain/model"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

// RollupResult is the vendor-level risk derived from the latest scored survey.
// Source is nil when the vendor has no scored survey.
type RollupResult struct {
	Source       *model.Survey
	CalculatedAt *time.Time
	Rating       valueobject.RiskRating
	Score        int
}

// VendorRollup selects the most recently scored survey of a vendor.
// The latest survey wins outright; earlier surveys are not blended in.
type VendorRollup struct{}

// NewVendorRollup creates a new VendorRollup.
func NewVendorRollup() *VendorRollup {
	return &VendorRollup{}
}

// Latest returns the scored survey with the most recent calculation time,
// or nil. Ties go to the greater survey ID so the choice is order independent.
func (r *VendorRollup) Latest(surveys []*model.Survey) *model.Survey {
	var latest *model.Survey
	for _, s := range surveys {
		if !s.IsScored() {
			continue
		}
		if latest == nil {
			latest = s
			continue
		}
		at, best := *s.RiskScoreCalculatedAt(), *latest.RiskScoreCalculatedAt()
		if at.After(best) || (at.Equal(best) && s.ID().String() > latest.ID().String()) {
			latest = s
		}
	}
	return latest
}

// Rollup derives the vendor score and rating. Without a scored survey the
// result is score 0 with rating VERY_LOW.
func (r *VendorRollup) Rollup(surveys []*model.Survey, classifier *RatingClassifier) RollupResult {
	latest := r.Latest(surveys)
	if latest == nil {
		return RollupResult{Rating: valueobject.RiskRatingVeryLow}
	}

	score := *latest.RiskScore()
	return RollupResult{
		Source:       latest,
		Score:        score,
		Rating:       classifier.ClassifyScore(score),
		CalculatedAt: latest.RiskScoreCalculatedAt(),
	}
}
