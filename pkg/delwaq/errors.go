package delwaq

import (
	"errors"

	"github.com/beetlebugorg/delwaq/internal/layout"
)

var (
	// ErrNoData indicates a missing or empty file, or a NetCDF file without a
	// time variable.
	ErrNoData = layout.ErrNoData

	// ErrUnknownSubstance indicates a substance not listed in the metadata.
	ErrUnknownSubstance = layout.ErrUnknownSubstance

	// ErrNotImplemented indicates a query the store does not support, such
	// as a multi-valued filter. It signals a caller defect, not a data
	// condition.
	ErrNotImplemented = errors.New("not implemented")

	// ErrReadOnly is returned by every mutating Store operation.
	ErrReadOnly = errors.New("function store is read-only")

	// ErrUnknownFormat indicates a path whose suffix names no Delwaq output.
	ErrUnknownFormat = errors.New("unknown output format")
)

// IndexError is returned for a timestep or segment index outside the
// metadata range.
type IndexError = layout.IndexError

// FormatError is returned for a header field that cannot be decoded.
type FormatError = layout.FormatError
