package delwaq

import "time"

// ValueType is the kind of value a Variable holds.
type ValueType int

const (
	// TypeDouble is a dependent parameter value.
	TypeDouble ValueType = iota
	// TypeTime is a timestamp axis.
	TypeTime
	// TypeIndex is a segment index axis.
	TypeIndex
	// TypeLocation is a named observation point axis.
	TypeLocation
)

func (t ValueType) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeTime:
		return "time"
	case TypeIndex:
		return "index"
	case TypeLocation:
		return "location"
	default:
		return "unknown"
	}
}

// Variable is an axis (Independent) or a parameter defined over its
// Arguments.
type Variable struct {
	Name        string
	ValueType   ValueType
	Independent bool
	Arguments   []*Variable

	// NoDataValue is excluded from minimum and maximum tracking. Nil uses the
	// file's _FillValue, or 0.
	NoDataValue *float64
}

// Argument returns the first argument of the given type, or nil.
func (v *Variable) Argument(t ValueType) *Variable {
	for _, a := range v.Arguments {
		if a.ValueType == t {
			return a
		}
	}
	return nil
}

// Filter restricts a query along the axis of one variable.
type Filter interface {
	FilterVariable() *Variable
}

// TimeFilter selects timestamps.
type TimeFilter struct {
	Variable *Variable
	Values   []time.Time
}

func (f *TimeFilter) FilterVariable() *Variable { return f.Variable }

// IndexFilter selects segment indices.
type IndexFilter struct {
	Variable *Variable
	Values   []int
}

func (f *IndexFilter) FilterVariable() *Variable { return f.Variable }

// LocationFilter selects observation points by name.
type LocationFilter struct {
	Variable *Variable
	Values   []string
}

func (f *LocationFilter) FilterVariable() *Variable { return f.Variable }

// IndexRangeFilter selects the indices Min through Max. The Store does not
// support range queries and rejects it with ErrNotImplemented.
type IndexRangeFilter struct {
	Variable *Variable
	Min, Max int
}

func (f *IndexRangeFilter) FilterVariable() *Variable { return f.Variable }

// valueCount returns the number of values of a value filter, or -1 for a
// range filter.
func valueCount(f Filter) int {
	switch x := f.(type) {
	case *TimeFilter:
		return len(x.Values)
	case *IndexFilter:
		return len(x.Values)
	case *LocationFilter:
		return len(x.Values)
	default:
		return -1
	}
}

// Array is the result of a query. Exactly one of the value slices is set,
// matching the queried variable's ValueType, and Shape gives its dimensions.
type Array struct {
	Shape     []int
	Float64s  []float64
	Times     []time.Time
	Indices   []int
	Locations []string
}

// Len returns the number of values.
func (a *Array) Len() int {
	switch {
	case a.Float64s != nil:
		return len(a.Float64s)
	case a.Times != nil:
		return len(a.Times)
	case a.Indices != nil:
		return len(a.Indices)
	default:
		return len(a.Locations)
	}
}

func emptyArray(t ValueType) *Array {
	switch t {
	case TypeTime:
		return &Array{Shape: []int{0}, Times: []time.Time{}}
	case TypeIndex:
		return &Array{Shape: []int{0}, Indices: []int{}}
	case TypeLocation:
		return &Array{Shape: []int{0}, Locations: []string{}}
	default:
		return &Array{Shape: []int{0}, Float64s: []float64{}}
	}
}

func emptyValues() *Array {
	return &Array{Shape: []int{0, 0}, Float64s: []float64{}}
}
