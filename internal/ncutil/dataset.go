// Package ncutil is the thin layer between the Delwaq NetCDF decoders and the
// NetCDF library: a small dataset abstraction, attribute lookups, CF time
// decoding, Conventions parsing and origin/shape sub-array reads.
package ncutil

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing variable or dimension.
	ErrNotFound = errors.New("not found")

	// ErrNoTimeVariable indicates that no variable has standard_name = time.
	ErrNoTimeVariable = errors.New("no time variable")
)

// Dataset is an open N-dimensional scientific array file.
type Dataset interface {
	// Variables lists the variable names in file order.
	Variables() []string

	// Variable returns a variable by name, or ErrNotFound.
	Variable(name string) (Variable, error)

	// Attribute returns a global attribute.
	Attribute(name string) (any, bool)

	// DimensionLength returns the current length of a named dimension.
	DimensionLength(name string) (int, bool)

	Close()
}

// Variable is one array of a Dataset.
type Variable interface {
	Name() string

	// Dimensions returns the dimension names, outermost first.
	Dimensions() []string

	Attribute(name string) (any, bool)

	// Read returns the sub-array starting at origin with the given shape,
	// flattened in row-major order. origin and shape have one entry per
	// dimension.
	Read(origin, shape []int) ([]float64, error)

	// ReadStrings returns the rows of a character array.
	ReadStrings() ([]string, error)
}

// Lengths returns the dimension lengths of v.
func Lengths(ds Dataset, v Variable) ([]int, error) {
	dims := v.Dimensions()
	lengths := make([]int, len(dims))
	for i, d := range dims {
		n, ok := ds.DimensionLength(d)
		if !ok {
			return nil, fmt.Errorf("dimension %q of %s: %w", d, v.Name(), ErrNotFound)
		}
		lengths[i] = n
	}
	return lengths, nil
}

// ReadAll reads every value of v.
func ReadAll(ds Dataset, v Variable) ([]float64, error) {
	lengths, err := Lengths(ds, v)
	if err != nil {
		return nil, err
	}
	return v.Read(make([]int, len(lengths)), lengths)
}
