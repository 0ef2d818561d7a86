// Package field holds dataset values as the data service reported them.
//
// A Value is either Present (a number or a string taken verbatim from the
// payload) or Absent. There is no zero-value default: a missing key, a JSON
// null and the service's own absence markers all decode to Absent, while a
// literal 0 stays Present.
package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the content of a Value.
type Kind uint8

const (
	// KindAbsent marks a value the dataset does not contain.
	KindAbsent Kind = iota
	// KindNumber is a numeric value, kept as its literal JSON text.
	KindNumber
	// KindString is a textual value.
	KindString
)

// absentMarkers are the exact strings the data service emits in place of a
// missing cell. Matching is by equality, never by substring.
var absentMarkers = map[string]struct{}{
	"N/A":           {},
	"Not available": {},
}

// Value is a tagged dataset value. The zero Value is Absent.
type Value struct {
	kind Kind
	text string
}

// Absent returns the value for data that is not in the dataset.
func Absent() Value { return Value{} }

// Number returns a present numeric value from its literal text.
// The text must parse as a finite float; anything else yields a string
// value so that nothing the service sent is lost.
func Number(text string) Value {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return String(text)
	}
	return Value{kind: KindNumber, text: text}
}

// Float returns a present numeric value.
func Float(f float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Int returns a present integral value.
func Int(n int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(n, 10)}
}

// String returns a present textual value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Kind reports what the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the dataset lacks this value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsPresent reports whether the dataset supplied this value.
func (v Value) IsPresent() bool { return v.kind != KindAbsent }

// Text returns the literal form of a present value and false for Absent.
func (v Value) Text() (string, bool) {
	if v.kind == KindAbsent {
		return "", false
	}
	return v.text, true
}

// Float64 returns the numeric value. ok is false for Absent and for strings.
func (v Value) Float64() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	return f, err == nil
}

// Equal reports whether two values carry the same kind and literal.
func (v Value) Equal(o Value) bool { return v.kind == o.kind && v.text == o.text }

// GoString aids test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindNumber:
		return "field.Number(" + strconv.Quote(v.text) + ")"
	case KindString:
		return "field.String(" + strconv.Quote(v.text) + ")"
	default:
		return "field.Absent()"
	}
}

// UnmarshalJSON decodes a JSON scalar into a Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Absent()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string value: %w", err)
		}
		if _, marker := absentMarkers[s]; marker {
			*v = Absent()
			return nil
		}
		*v = String(s)
	case 't', 'f':
		// Booleans have no numeric or textual meaning here; keep the literal.
		*v = String(string(data))
	case '{', '[':
		return fmt.Errorf("decode value: expected scalar, got %q", data[:1])
	default:
		*v = Number(string(data))
	}
	return nil
}

// MarshalJSON writes the literal back out; Absent becomes null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(v.text), nil
	case KindString:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML renders the value for YAML output.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		if f, ok := v.Float64(); ok {
			return f, nil
		}
		return v.text, nil
	case KindString:
		return v.text, nil
	default:
		return NotAvailable, nil
	}
}
