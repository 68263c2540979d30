package ncutil

import (
	"fmt"
	"reflect"
)

// All selects the full extent of a dimension in a Hyperslab selection.
const All = -1

// Hyperslab returns the origin and shape that select one index (or All) of
// each dimension named in sel. Dimensions not in sel are pinned to index 0
// with length 1.
func Hyperslab(dims []string, lengths []int, sel map[string]int) (origin, shape []int) {
	origin = make([]int, len(dims))
	shape = make([]int, len(dims))
	for i, d := range dims {
		idx, ok := sel[d]
		switch {
		case !ok:
			origin[i], shape[i] = 0, 1
		case idx == All:
			origin[i], shape[i] = 0, lengths[i]
		default:
			origin[i], shape[i] = idx, 1
		}
	}
	return origin, shape
}

// Subset extracts the origin/shape sub-array from row-major data with the
// given dimension lengths.
func Subset(data []float64, lengths, origin, shape []int) ([]float64, error) {
	n := len(lengths)
	if len(origin) != n || len(shape) != n {
		return nil, fmt.Errorf("subset: %d dimensions, origin has %d, shape has %d", n, len(origin), len(shape))
	}

	strides := make([]int, n)
	size := 1
	for i := n - 1; i >= 0; i-- {
		strides[i] = size
		size *= lengths[i]
	}
	if len(data) < size {
		return nil, fmt.Errorf("subset: have %d values, dimensions need %d", len(data), size)
	}

	total := 1
	for i := 0; i < n; i++ {
		if origin[i] < 0 || shape[i] < 0 || origin[i]+shape[i] > lengths[i] {
			return nil, fmt.Errorf("subset: dimension %d range [%d, %d) outside [0, %d)",
				i, origin[i], origin[i]+shape[i], lengths[i])
		}
		total *= shape[i]
	}

	out := make([]float64, 0, total)
	counter := make([]int, n)
	for k := 0; k < total; k++ {
		off := 0
		for i := range counter {
			off += (origin[i] + counter[i]) * strides[i]
		}
		out = append(out, data[off])

		for i := n - 1; i >= 0; i-- {
			counter[i]++
			if counter[i] < shape[i] {
				break
			}
			counter[i] = 0
		}
	}
	return out, nil
}

// Flatten converts a numeric scalar or a (nested) numeric slice into a
// row-major []float64.
func Flatten(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case [][]float32:
		var out []float64
		for _, row := range x {
			for _, f := range row {
				out = append(out, float64(f))
			}
		}
		return out, nil
	}

	var out []float64
	if err := flatten(reflect.ValueOf(v), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(rv reflect.Value, out *[]float64) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := flatten(rv.Index(i), out); err != nil {
				return err
			}
		}
	case reflect.Float32, reflect.Float64:
		*out = append(*out, rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*out = append(*out, float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		*out = append(*out, float64(rv.Uint()))
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return fmt.Errorf("flatten: nil value")
		}
		return flatten(rv.Elem(), out)
	default:
		return fmt.Errorf("flatten: unsupported type %s", rv.Type())
	}
	return nil
}
