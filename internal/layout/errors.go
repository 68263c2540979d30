package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData indicates that there is nothing to read yet: the file does not
	// exist, is empty, or (NetCDF) has no time variable. A simulation that has
	// not started or is still writing produces this state.
	ErrNoData = errors.New("no output data available")

	// ErrUnknownSubstance indicates that a substance name is not listed in the
	// metadata of the file.
	ErrUnknownSubstance = errors.New("unknown substance")
)

// IndexKind names the axis an IndexError refers to.
type IndexKind string

const (
	IndexTimeStep IndexKind = "timestep"
	IndexSegment  IndexKind = "segment"
)

// IndexError indicates a timestep or segment index outside the metadata range.
type IndexError struct {
	Kind  IndexKind
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Kind, e.Index, e.Limit)
}

// FormatError indicates a header field that could not be decoded.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s field: %s", e.Field, e.Reason)
}
