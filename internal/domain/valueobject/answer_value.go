package valueobject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnswerValue is the JSON payload a respondent submitted for a question:
// a boolean, a label, a list of labels, free text, a file reference, or null.
type AnswerValue struct {
	decoded any
	raw     json.RawMessage
}

var truthyStrings = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"on":   {},
	"y":    {},
}

// NewAnswerValue decodes a raw JSON payload. Empty input is treated as null.
func NewAnswerValue(raw []byte) (AnswerValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return AnswerValue{raw: json.RawMessage("null")}, nil
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return AnswerValue{}, fmt.Errorf("invalid answer value: %w", err)
	}
	return AnswerValue{decoded: decoded, raw: append(json.RawMessage(nil), trimmed...)}, nil
}

// AnswerValueOf encodes a Go value (bool, string, []string, ...) as an AnswerValue.
func AnswerValueOf(v any) (AnswerValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return AnswerValue{}, fmt.Errorf("invalid answer value: %w", err)
	}
	return NewAnswerValue(raw)
}

// MustAnswerValue is like AnswerValueOf but panics on error.
func MustAnswerValue(v any) AnswerValue {
	av, err := AnswerValueOf(v)
	if err != nil {
		panic(err)
	}
	return av
}

// IsEmpty reports whether the value counts as no answer: null or an empty
// selection list. Blank strings are answers and go through the per-type rules.
func (v AnswerValue) IsEmpty() bool {
	switch d := v.decoded.(type) {
	case nil:
		return true
	case []any:
		return len(d) == 0
	default:
		return false
	}
}

// Truthy interprets the value as a yes/no answer.
func (v AnswerValue) Truthy() bool {
	switch d := v.decoded.(type) {
	case bool:
		return d
	case float64:
		return d != 0
	case string:
		_, ok := truthyStrings[strings.ToLower(strings.TrimSpace(d))]
		return ok
	default:
		return false
	}
}

// Labels returns the selected option labels. A scalar yields one label;
// null elements are skipped.
func (v AnswerValue) Labels() []string {
	switch d := v.decoded.(type) {
	case []any:
		labels := make([]string, 0, len(d))
		for _, item := range d {
			if label, ok := scalarLabel(item); ok {
				labels = append(labels, label)
			}
		}
		return labels
	default:
		if label, ok := scalarLabel(d); ok {
			return []string{label}
		}
		return nil
	}
}

func scalarLabel(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}

// HasFile reports whether the value references at least one uploaded file.
func (v AnswerValue) HasFile() bool {
	switch d := v.decoded.(type) {
	case string:
		return strings.TrimSpace(d) != ""
	case []any:
		return len(d) > 0
	case map[string]any:
		return len(d) > 0
	case bool:
		return d
	default:
		return false
	}
}

// Raw returns the JSON encoding of the value.
func (v AnswerValue) Raw() json.RawMessage {
	if len(v.raw) == 0 {
		return json.RawMessage("null")
	}
	return v.raw
}

// MarshalJSON implements json.Marshaler.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return v.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	decoded, err := NewAnswerValue(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// String returns the JSON text of the value.
func (v AnswerValue) String() string {
	return string(v.Raw())
}
