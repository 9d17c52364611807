package valueobject

import "strconv"

type questionScoreKind uint8

const (
	questionScoreScored questionScoreKind = iota
	questionScoreNotApplicable
	questionScorePendingReview
)

// QuestionScore is the risk contribution of one answered question.
// Not-applicable and pending-review results are excluded from aggregation.
type QuestionScore struct {
	kind  questionScoreKind
	value int
}

// ScoreOf returns an applicable score.
func ScoreOf(value int) QuestionScore {
	return QuestionScore{kind: questionScoreScored, value: value}
}

// NotApplicableScore returns a result excluded from aggregation by reviewer decision.
func NotApplicableScore() QuestionScore {
	return QuestionScore{kind: questionScoreNotApplicable}
}

// PendingReviewScore returns a result excluded from aggregation until a reviewer scores it.
func PendingReviewScore() QuestionScore {
	return QuestionScore{kind: questionScorePendingReview}
}

// IsApplicable reports whether the score takes part in aggregation.
func (s QuestionScore) IsApplicable() bool { return s.kind == questionScoreScored }

// IsPendingReview reports whether the score is waiting on a reviewer.
func (s QuestionScore) IsPendingReview() bool { return s.kind == questionScorePendingReview }

// Value returns the numeric score; 0 when not applicable.
func (s QuestionScore) Value() int {
	if s.kind != questionScoreScored {
		return 0
	}
	return s.value
}

// String returns the numeric score, "N/A" or "PENDING_REVIEW".
func (s QuestionScore) String() string {
	switch s.kind {
	case questionScoreNotApplicable:
		return "N/A"
	case questionScorePendingReview:
		return "PENDING_REVIEW"
	default:
		return strconv.Itoa(s.value)
	}
}
