// Package numeric holds the lenient number coercion used by the normalizers.
// A cell that cannot be parsed never fails a row, it becomes a missing value.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// Float is a number that may be missing.
type Float struct {
	V     float64
	Valid bool
}

// Missing is the zero Float.
var Missing = Float{}

// Of wraps v; NaN is treated as missing.
func Of(v float64) Float {
	if math.IsNaN(v) {
		return Missing
	}
	return Float{V: v, Valid: true}
}

// Scale multiplies a present value by k.
func (f Float) Scale(k float64) Float {
	if !f.Valid {
		return f
	}
	return Of(f.V * k)
}

func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.V, 'f', -1, 64)
}

func (f Float) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText never fails: unparseable input yields Missing.
func (f *Float) UnmarshalText(b []byte) error {
	*f = Lenient(string(b))
	return nil
}

// Parser converts one raw cell into a number.
type Parser func(string) (float64, error)

// ParseFloat is the default Parser. Surrounding blanks are ignored.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Coerce turns a fallible parser into a total one that substitutes def
// for any value the parser rejects.
func Coerce(p Parser, def Float) func(string) Float {
	return func(s string) Float {
		v, err := p(s)
		if err != nil {
			return def
		}
		return Of(v)
	}
}

// Lenient parses s with ParseFloat, falling back to Missing.
func Lenient(s string) Float { return lenient(s) }

var lenient = Coerce(ParseFloat, Missing)

// Scaled returns a lenient converter that also multiplies by k.
func Scaled(k float64) func(string) Float {
	return func(s string) Float { return Lenient(s).Scale(k) }
}

// Column applies conv to every cell of a column.
func Column(cells []string, conv func(string) Float) []Float {
	out := make([]Float, len(cells))
	for i, c := range cells {
		out[i] = conv(c)
	}
	return out
}
