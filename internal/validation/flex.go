package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FlexFloat accepts a JSON number, a numeric JSON string or a form value.
// Blank input leaves it unset so that `required` reports the field.
type FlexFloat struct {
	Value float64
	Set   bool
	Valid bool
}

// ParseFlexFloat reads a form or query value.
func ParseFlexFloat(s string) FlexFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexFloat{}
	}
	// Brazilian clients sometimes send a decimal comma.
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return FlexFloat{Set: true}
	}
	return FlexFloat{Value: f, Set: true, Valid: true}
}

// Float returns a FlexFloat holding f.
func Float(f float64) FlexFloat { return FlexFloat{Value: f, Set: true, Valid: true} }

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = ParseFlexFloat(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		*f = FlexFloat{Set: true}
		return nil
	}
	*f = Float(n)
	return nil
}

func flexValue(v reflect.Value) any {
	f, ok := v.Interface().(FlexFloat)
	if !ok || !f.Set {
		return nil
	}
	if !f.Valid {
		return math.NaN()
	}
	return f.Value
}

// FlexID is a numeric identifier that may arrive as a JSON string.
type FlexID uint64

func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		*id = 0
		return nil
	}
	*id = FlexID(n)
	return nil
}

// ParseID reads an identifier from a query or form value, returning 0 when
// the value is missing or malformed.
func ParseID(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
