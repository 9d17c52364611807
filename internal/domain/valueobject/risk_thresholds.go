package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned when rating boundaries are not strictly ascending within [0,100].
var ErrInvalidThresholds = errors.New("invalid risk thresholds")

// RiskThresholds holds the four inclusive upper bounds of the VERY_LOW, LOW,
// MEDIUM and HIGH bands. Scores above High are CRITICAL.
type RiskThresholds struct {
	veryLow int
	low     int
	medium  int
	high    int
}

// DefaultRiskThresholds returns the 20/40/60/80 boundaries.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{veryLow: 20, low: 40, medium: 60, high: 80}
}

// NewRiskThresholds creates validated thresholds.
func NewRiskThresholds(veryLow, low, medium, high int) (RiskThresholds, error) {
	t := RiskThresholds{veryLow: veryLow, low: low, medium: medium, high: high}
	if err := t.Validate(); err != nil {
		return RiskThresholds{}, err
	}
	return t, nil
}

// ReconstructRiskThresholds rebuilds thresholds from stored values without validation.
func ReconstructRiskThresholds(veryLow, low, medium, high int) RiskThresholds {
	return RiskThresholds{veryLow: veryLow, low: low, medium: medium, high: high}
}

// Validate checks 0 <= VeryLow < Low < Medium < High <= 100.
func (t RiskThresholds) Validate() error {
	if t.veryLow < 0 || t.high > 100 {
		return fmt.Errorf("%w: boundaries must be within [0,100], got %s", ErrInvalidThresholds, t)
	}
	if t.veryLow >= t.low || t.low >= t.medium || t.medium >= t.high {
		return fmt.Errorf("%w: boundaries must be strictly ascending, got %s", ErrInvalidThresholds, t)
	}
	return nil
}

func (t RiskThresholds) VeryLow() int { return t.veryLow }
func (t RiskThresholds) Low() int     { return t.low }
func (t RiskThresholds) Medium() int  { return t.medium }
func (t RiskThresholds) High() int    { return t.high }

// String returns the boundaries as "veryLow/low/medium/high".
func (t RiskThresholds) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", t.veryLow, t.low, t.medium, t.high)
}

// Equal checks equality with another RiskThresholds.
func (t RiskThresholds) Equal(other RiskThresholds) bool {
	return t == other
}
