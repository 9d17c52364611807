package valueobject

import "fmt"

// RiskRating is an immutable value object representing the ordinal vendor risk category.
type RiskRating struct {
	value string
}

var (
	RiskRatingVeryLow  = RiskRating{value: "VERY_LOW"}
	RiskRatingLow      = RiskRating{value: "LOW"}
	RiskRatingMedium   = RiskRating{value: "MEDIUM"}
	RiskRatingHigh     = RiskRating{value: "HIGH"}
	RiskRatingCritical = RiskRating{value: "CRITICAL"}
)

// RiskRatingFromString reconstructs a RiskRating from its string representation.
func RiskRatingFromString(s string) (RiskRating, error) {
	switch s {
	case "VERY_LOW":
		return RiskRatingVeryLow, nil
	case "LOW":
		return RiskRatingLow, nil
	case "MEDIUM":
		return RiskRatingMedium, nil
	case "HIGH":
		return RiskRatingHigh, nil
	case "CRITICAL":
		return RiskRatingCritical, nil
	default:
		return RiskRating{}, fmt.Errorf("invalid risk rating: %s", s)
	}
}

// String returns the string representation.
func (r RiskRating) String() string {
	return r.value
}

// Rank returns the ordinal position, VERY_LOW=1 through CRITICAL=5. Unset is 0.
func (r RiskRating) Rank() int {
	switch r.value {
	case "VERY_LOW":
		return 1
	case "LOW":
		return 2
	case "MEDIUM":
		return 3
	case "HIGH":
		return 4
	case "CRITICAL":
		return 5
	default:
		return 0
	}
}

// IsZero returns true if the RiskRating has not been set.
func (r RiskRating) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskRating.
func (r RiskRating) Equal(other RiskRating) bool {
	return r.value == other.value
}
