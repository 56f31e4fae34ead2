package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is a numeric reading that may be undefined, e.g. before an indicator
// window has filled or when its denominator degenerates to zero
type Value struct {
	Float64 float64
	Valid   bool
}

// Some returns a defined Value. NaN and infinities are not representable
// and yield an undefined Value.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{Float64: v, Valid: true}
}

// Undefined returns the undefined Value
func Undefined() Value {
	return Value{}
}

// Get returns the underlying float and whether it is defined
func (v Value) Get() (float64, bool) {
	return v.Float64, v.Valid
}

// OrNaN returns the float, or NaN when undefined
func (v Value) OrNaN() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// String formats the value for logs and reports
func (v Value) String() string {
	if !v.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// MarshalJSON encodes an undefined Value as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON accepts a number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Series is a sequence of values aligned 1:1 with a bar sequence
type Series []Value

// NewSeries returns an all-undefined series of length n
func NewSeries(n int) Series {
	return make(Series, n)
}

// SeriesOf wraps plain floats; NaN entries become undefined
func SeriesOf(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Some(v)
	}
	return s
}

// Len returns the series length
func (s Series) Len() int {
	return len(s)
}

// At returns the value at i, or undefined when i is out of range
func (s Series) At(i int) Value {
	if i < 0 || i >= len(s) {
		return Value{}
	}
	return s[i]
}

// Last returns the final value of the series
func (s Series) Last() Value {
	return s.At(len(s) - 1)
}

// Floats converts to plain floats, undefined entries as NaN
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.OrNaN()
	}
	return out
}

// DefinedCount returns the number of defined entries
func (s Series) DefinedCount() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// FirstDefined returns the index of the first defined entry, or -1
func (s Series) FirstDefined() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return -1
}

// Equal reports whether both series have identical length, definedness and
// values
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
