package dataset

import (
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/floats"
)

// Array holds the values of a variable in row-major order. Missing values are
// NaN.
type Array struct {
	Dims   []string
	Shape  []int
	Values []float64
}

// Len is the number of elements.
func (a *Array) Len() int { return len(a.Values) }

// Axis returns the position of dim, or -1.
func (a *Array) Axis(dim string) int {
	for i, d := range a.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// At returns the element at the given per-dimension indices.
func (a *Array) At(idx ...int) float64 {
	off := 0
	for i, n := range a.Shape {
		off = off*n + idx[i]
	}
	return a.Values[off]
}

// Index selects position i along dim and drops that dimension.
func (a *Array) Index(dim string, i int) (*Array, error) {
	k := a.Axis(dim)
	if k < 0 {
		return nil, fmt.Errorf("dimension %s not in %v", dim, a.Dims)
	}
	if i < 0 || i >= a.Shape[k] {
		return nil, fmt.Errorf("index %d out of range for %s (length %d)", i, dim, a.Shape[k])
	}
	outer, inner := 1, 1
	for _, n := range a.Shape[:k] {
		outer *= n
	}
	for _, n := range a.Shape[k+1:] {
		inner *= n
	}
	out := make([]float64, 0, outer*inner)
	for o := 0; o < outer; o++ {
		start := (o*a.Shape[k] + i) * inner
		out = append(out, a.Values[start:start+inner]...)
	}
	dims := append(append([]string(nil), a.Dims[:k]...), a.Dims[k+1:]...)
	shape := append(append([]int(nil), a.Shape[:k]...), a.Shape[k+1:]...)
	return &Array{Dims: dims, Shape: shape, Values: out}, nil
}

// Rows returns a 2-D array as a slice of rows.
func (a *Array) Rows() ([][]float64, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("array has %d dimensions, want 2", len(a.Shape))
	}
	rows := make([][]float64, a.Shape[0])
	for r := range rows {
		rows[r] = a.Values[r*a.Shape[1] : (r+1)*a.Shape[1]]
	}
	return rows, nil
}

// Valid returns the non-NaN values.
func (a *Array) Valid() []float64 {
	out := make([]float64, 0, len(a.Values))
	for _, v := range a.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Range returns the minimum and maximum of the non-missing values.
func (a *Array) Range() (lo, hi float64, ok bool) {
	return Range(a.Values)
}

// Range returns the minimum and maximum of the non-NaN values in vs.
func Range(vs []float64) (lo, hi float64, ok bool) {
	valid := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0, 0, false
	}
	return floats.Min(valid), floats.Max(valid), true
}

// flatten appends the numeric leaves of a nested slice in row-major order.
// Non-numeric leaves become NaN.
func flatten(v any, out []float64) []float64 {
	switch t := v.(type) {
	case []float64:
		return append(out, t...)
	case []float32:
		for _, e := range t {
			out = append(out, float64(e))
		}
		return out
	case []int32:
		for _, e := range t {
			out = append(out, float64(e))
		}
		return out
	case []int16:
		for _, e := range t {
			out = append(out, float64(e))
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			for _, b := range rv.Bytes() {
				out = append(out, float64(b))
			}
			return out
		}
		for i := 0; i < rv.Len(); i++ {
			out = flatten(rv.Index(i).Interface(), out)
		}
		return out
	}
	f, ok := toFloat(v)
	if !ok {
		f = math.NaN()
	}
	return append(out, f)
}

// shapeOf returns the lengths of a nested slice, outermost first.
func shapeOf(v any) []int {
	var shape []int
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
		if rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
	}
	return shape
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// numbers returns every numeric value of an attribute.
func numbers(v any) []float64 {
	var out []float64
	for _, f := range flatten(v, nil) {
		if !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// applyCF masks _FillValue and missing_value entries and unpacks
// scale_factor/add_offset.
func applyCF(a *Array, v *Variable) {
	var missing []float64
	for _, name := range []string{"_FillValue", "missing_value"} {
		if raw, ok := v.raw(name); ok {
			missing = append(missing, numbers(raw)...)
		}
	}
	scale, offset := 1.0, 0.0
	if raw, ok := v.raw("scale_factor"); ok {
		if n := numbers(raw); len(n) > 0 {
			scale = n[0]
		}
	}
	if raw, ok := v.raw("add_offset"); ok {
		if n := numbers(raw); len(n) > 0 {
			offset = n[0]
		}
	}
	for i, x := range a.Values {
		for _, m := range missing {
			if x == m {
				x = math.NaN()
				break
			}
		}
		if !math.IsNaN(x) {
			x = x*scale + offset
		}
		a.Values[i] = x
	}
}
