package recordstore

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Field is a single record field as returned by the table API. The API is
// inconsistent about field shape: a field may arrive as a raw scalar
// ("3", 3, true) or as a wrapper object {"value": "3", "display_value":
// "In Progress"}. Field decodes both shapes once at the client boundary so
// downstream domain code always sees normalized scalars.
//
// Raw() is for computation and identity, Display() for presentation.
type Field struct {
	raw     string
	display string
	wrapped bool
	present bool
}

// wireWrapper is the {value, display_value} wire shape.
type wireWrapper struct {
	Value        json.RawMessage `json:"value"`
	DisplayValue json.RawMessage `json:"display_value"`
}

// UnmarshalJSON implements json.Unmarshaler, branching on the wire shape.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = Field{}
		return nil
	}

	if data[0] == '{' {
		var w wireWrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		f.raw = scalarString(w.Value)
		f.display = scalarString(w.DisplayValue)
		f.wrapped = true
		f.present = true
		return nil
	}

	f.raw = scalarString(data)
	f.display = ""
	f.wrapped = false
	f.present = true
	return nil
}

// MarshalJSON re-emits the raw value as a JSON string. Write payloads only
// ever carry scalars.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.raw)
}

// scalarString renders a raw JSON scalar to its string form without the
// surrounding quotes. Numbers and booleans keep their literal text.
func scalarString(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return ""
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
	}
	return string(data)
}

// Raw returns the raw value, used for identity and computation.
func (f Field) Raw() string {
	return f.raw
}

// Display returns the display value for presentation, falling back to the
// raw value when the field arrived as a bare scalar.
func (f Field) Display() string {
	if f.wrapped && f.display != "" {
		return f.display
	}
	return f.raw
}

// IsWrapped reports whether the field arrived as a wrapper object.
func (f Field) IsWrapped() bool {
	return f.wrapped
}

// IsZero reports whether the field was absent or null on the wire.
func (f Field) IsZero() bool {
	return !f.present || f.raw == ""
}

// String returns the raw value, or def when the field is empty.
func (f Field) String(def string) string {
	if f.IsZero() {
		return def
	}
	return f.raw
}

// Int parses the raw value as an integer, returning def on failure.
func (f Field) Int(def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(f.raw))
	if err != nil {
		return def
	}
	return n
}

// Float parses the raw value as a float, returning def on failure.
func (f Field) Float(def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
	if err != nil {
		return def
	}
	return v
}

// Bool reports whether the raw value reads as true. The table API stores
// booleans as the strings "true"/"false".
func (f Field) Bool() bool {
	return strings.EqualFold(strings.TrimSpace(f.raw), "true")
}
