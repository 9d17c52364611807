package valueobject

import "fmt"

// QuestionType is an immutable value object identifying how a question is answered.
type QuestionType struct {
	value string
}

var (
	QuestionTypeText           = QuestionType{value: "TEXT"}
	QuestionTypeLongText       = QuestionType{value: "LONG_TEXT"}
	QuestionTypeBoolean        = QuestionType{value: "BOOLEAN"}
	QuestionTypeSingleChoice   = QuestionType{value: "SINGLE_CHOICE"}
	QuestionTypeMultipleChoice = QuestionType{value: "MULTIPLE_CHOICE"}
	QuestionTypeFile           = QuestionType{value: "FILE"}
)

// QuestionTypeFromString reconstructs a QuestionType from its string representation.
func QuestionTypeFromString(s string) (QuestionType, error) {
	switch s {
	case "TEXT":
		return QuestionTypeText, nil
	case "LONG_TEXT":
		return QuestionTypeLongText, nil
	case "BOOLEAN":
		return QuestionTypeBoolean, nil
	case "SINGLE_CHOICE":
		return QuestionTypeSingleChoice, nil
	case "MULTIPLE_CHOICE":
		return QuestionTypeMultipleChoice, nil
	case "FILE":
		return QuestionTypeFile, nil
	default:
		return QuestionType{}, fmt.Errorf("invalid question type: %s", s)
	}
}

// String returns the string representation.
func (t QuestionType) String() string {
	return t.value
}

// IsZero returns true if the QuestionType has not been set.
func (t QuestionType) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another QuestionType.
func (t QuestionType) Equal(other QuestionType) bool {
	return t.value == other.value
}

// IsFreeText reports whether answers of this type need a human-assigned score.
func (t QuestionType) IsFreeText() bool {
	return t == QuestionTypeText || t == QuestionTypeLongText
}
