package valueobject

import "fmt"

// RiskImpact is the polarity of an affirmative or selected answer.
type RiskImpact struct {
	value string
}

var (
	// RiskImpactPositive means a "yes" reduces risk.
	RiskImpactPositive = RiskImpact{value: "POSITIVE"}
	// RiskImpactNegative means a "yes" increases risk.
	RiskImpactNegative = RiskImpact{value: "NEGATIVE"}
	// RiskImpactNeutral marks an informational question.
	RiskImpactNeutral = RiskImpact{value: "NEUTRAL"}
)

// RiskImpactFromString reconstructs a RiskImpact from its string representation.
func RiskImpactFromString(s string) (RiskImpact, error) {
	switch s {
	case "POSITIVE":
		return RiskImpactPositive, nil
	case "NEGATIVE":
		return RiskImpactNegative, nil
	case "NEUTRAL":
		return RiskImpactNeutral, nil
	default:
		return RiskImpact{}, fmt.Errorf("invalid risk impact: %s", s)
	}
}

// String returns the string representation.
func (i RiskImpact) String() string {
	return i.value
}

// IsZero returns true if the RiskImpact has not been set.
func (i RiskImpact) IsZero() bool {
	return i.value == ""
}

// Equal checks equality with another RiskImpact.
func (i RiskImpact) Equal(other RiskImpact) bool {
	return i.value == other.value
}
