package indicator

import "strconv"

// Value is an indicator reading that may be undefined, e.g. before the
// indicator has enough lookback.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a defined value
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// None is the undefined value
var None = Value{}

// MarshalJSON encodes undefined values as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.Float, 'g', -1, 64), nil
}

// Series is a per-bar indicator column aligned index-for-index with its input
type Series []Value

// At returns the value at i, or None when i is out of range
func (s Series) At(i int) Value {
	if i < 0 || i >= len(s) {
		return None
	}
	return s[i]
}

// Sub returns a - b per bar; undefined wherever either side is undefined
func Sub(a, b Series) Series {
	n := min(len(a), len(b))
	out := make(Series, n)
	for i := 0; i < n; i++ {
		if a[i].Valid && b[i].Valid {
			out[i] = Some(a[i].Float - b[i].Float)
		}
	}
	return out
}

// FromFloats wraps a fully defined slice
func FromFloats(values []float64) Series {
	out := make(Series, len(values))
	for i, v := range values {
		out[i] = Some(v)
	}
	return out
}
