package eeg

import (
	"strconv"
	"strings"
)

// Field names read by the core. Samples carry many more (delta, theta, gamma,
// total_power, time, ...) which pass through untouched.
const (
	FieldLeftAlpha  = "Left__alpha"
	FieldRightAlpha = "Right__alpha"
	FieldLeftBeta   = "Left__beta"
	FieldRightBeta  = "Right__beta"
	FieldLeftPBad   = "Left__p_bad"
	FieldRightPBad  = "Right__p_bad"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindText
)

// Value is a single sample field: either a number or the raw text that failed
// to parse as one.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a raw-text Value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// ParseValue coerces a persisted cell to a number, keeping the original string
// when it does not parse.
func ParseValue(s string) Value {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Text(s)
	}
	return Number(f)
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric value and true, or 0 and false for raw text.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the value the way it would be written back to a record.
func (v Value) String() string {
	if v.kind == KindText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Sample is one periodic reading from the sensor hub keyed by field name.
type Sample map[string]Value

// Float returns the numeric field key, or fallback when the field is absent or
// holds raw text.
func (s Sample) Float(key string, fallback float64) float64 {
	v, ok := s[key]
	if !ok {
		return fallback
	}
	f, ok := v.Float()
	if !ok {
		return fallback
	}
	return f
}

// SampleFromFloats builds a Sample from plain numbers.
func SampleFromFloats(fields map[string]float64) Sample {
	s := make(Sample, len(fields))
	for k, f := range fields {
		s[k] = Number(f)
	}
	return s
}
