package service

import "github.com/opengrc/grc/internal/domain/valueobject"

// RatingClassifier maps a 0-100 score to a RiskRating using injected thresholds.
// It does not validate the thresholds; the settings layer does.
type RatingClassifier struct {
	thresholds valueobject.RiskThresholds
}

// NewRatingClassifier creates a classifier for the given thresholds.
func NewRatingClassifier(thresholds valueobject.RiskThresholds) *RatingClassifier {
	return &RatingClassifier{thresholds: thresholds}
}

// Classify returns the rating for score. An unassessed (nil) score is VERY_LOW.
func (c *RatingClassifier) Classify(score *int) valueobject.RiskRating {
	if score == nil {
		return valueobject.RiskRatingVeryLow
	}
	return c.ClassifyScore(*score)
}

// ClassifyScore returns the rating for a known score. Each threshold is an
// inclusive upper bound.
func (c *RatingClassifier) ClassifyScore(score int) valueobject.RiskRating {
	switch {
	case score <= c.thresholds.VeryLow():
		return valueobject.RiskRatingVeryLow
	case score <= c.thresholds.Low():
		return valueobject.RiskRatingLow
	case score <= c.thresholds.Medium():
		return valueobject.RiskRatingMedium
	case score <= c.thresholds.High():
		return valueobject.RiskRatingHigh
	default:
		return valueobject.RiskRatingCritical
	}
}

// Thresholds returns the thresholds in use.
func (c *RatingClassifier) Thresholds() valueobject.RiskThresholds {
	return c.thresholds
}
