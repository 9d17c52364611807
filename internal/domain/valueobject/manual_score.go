package valueobject

import (
	"errors"
	"fmt"
)

// ErrManualScoreOutOfRange is returned when a reviewer score falls outside [0,100].
var ErrManualScoreOutOfRange = errors.New("manual score must be between 0 and 100")

type manualScoreState uint8

const (
	manualScorePending manualScoreState = iota
	manualScoreNotApplicable
	manualScoreScored
)

// ManualScore is the reviewer judgement attached to a free-text answer.
// The zero value is pending (not yet reviewed).
type ManualScore struct {
	state manualScoreState
	value int
}

// ManualScorePending returns a score awaiting review.
func ManualScorePending() ManualScore {
	return ManualScore{state: manualScorePending}
}

// ManualScoreNotApplicable returns a score marking the answer as not applicable.
func ManualScoreNotApplicable() ManualScore {
	return ManualScore{state: manualScoreNotApplicable}
}

// ManualScoreOf returns a reviewed score. The value is not range-checked; see Validate.
func ManualScoreOf(value int) ManualScore {
	return ManualScore{state: manualScoreScored, value: value}
}

// ManualScoreFromColumns rebuilds a ManualScore from its nullable column pair.
// The not-applicable flag takes precedence over a stored value.
func ManualScoreFromColumns(score *int, notApplicable bool) ManualScore {
	switch {
	case notApplicable:
		return ManualScoreNotApplicable()
	case score != nil:
		return ManualScoreOf(*score)
	default:
		return ManualScorePending()
	}
}

// Columns returns the nullable column pair used for persistence.
func (m ManualScore) Columns() (score *int, notApplicable bool) {
	switch m.state {
	case manualScoreScored:
		v := m.value
		return &v, false
	case manualScoreNotApplicable:
		return nil, true
	default:
		return nil, false
	}
}

// IsPending reports whether the answer has not been reviewed yet.
func (m ManualScore) IsPending() bool { return m.state == manualScorePending }

// IsNotApplicable reports whether the reviewer marked the answer not applicable.
func (m ManualScore) IsNotApplicable() bool { return m.state == manualScoreNotApplicable }

// Value returns the reviewed score and true, or 0 and false when not scored.
func (m ManualScore) Value() (int, bool) {
	if m.state != manualScoreScored {
		return 0, false
	}
	return m.value, true
}

// Validate rejects scored values outside [0,100].
func (m ManualScore) Validate() error {
	if m.state == manualScoreScored && (m.value < 0 || m.value > 100) {
		return fmt.Errorf("%w: got %d", ErrManualScoreOutOfRange, m.value)
	}
	return nil
}

// String returns "PENDING", "N/A" or the numeric score.
func (m ManualScore) String() string {
	switch m.state {
	case manualScoreNotApplicable:
		return "N/A"
	case manualScoreScored:
		return fmt.Sprintf("%d", m.value)
	default:
		return "PENDING"
	}
}
