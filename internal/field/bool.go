package field

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Bool is a boolean flag from the payload that may also be Absent.
type Bool struct {
	set bool
	val bool
}

// True and False return present flags.
func True() Bool  { return Bool{set: true, val: true} }
func False() Bool { return Bool{set: true} }

// BoolOf returns a present flag.
func BoolOf(b bool) Bool { return Bool{set: true, val: b} }

// IsAbsent reports whether the payload omitted the flag.
func (b Bool) IsAbsent() bool { return !b.set }

// Get returns the flag and whether it was present.
func (b Bool) Get() (value, ok bool) { return b.val, b.set }

// UnmarshalJSON accepts true, false and null.
func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = Bool{}
	case bytes.Equal(data, []byte("true")):
		*b = True()
	case bytes.Equal(data, []byte("false")):
		*b = False()
	default:
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			if _, marker := absentMarkers[s]; marker {
				*b = Bool{}
				return nil
			}
		}
		return fmt.Errorf("decode flag: unexpected %s", data)
	}
	return nil
}

// MarshalJSON writes true, false or null.
func (b Bool) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	return json.Marshal(b.val)
}

// MarshalYAML renders the flag for YAML output.
func (b Bool) MarshalYAML() (any, error) {
	if !b.set {
		return NotAvailable, nil
	}
	return b.val, nil
}
