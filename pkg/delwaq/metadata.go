package delwaq

import (
	"time"

	"github.com/beetlebugorg/delwaq/internal/layout"
)

// MetaData describes the invariant structure of one output file: its
// parameters, times and locations.
//
// MetaData is read once per file and passed unchanged into every query
// against that file. Slices returned by its methods must not be modified.
type MetaData struct {
	m *layout.MetaData
}

func newMetaData(m *layout.MetaData) *MetaData {
	if m == nil {
		m = &layout.MetaData{}
	}
	return &MetaData{m: m}
}

func (md *MetaData) internal() *layout.MetaData {
	if md == nil {
		return nil
	}
	return md.m
}

// Empty reports whether the file holds no data yet.
func (md *MetaData) Empty() bool {
	return md.internal().Empty()
}

// Substances returns the parameter names in file order.
func (md *MetaData) Substances() []string {
	if md.internal() == nil {
		return nil
	}
	return md.m.Substances
}

// SubstanceVariable returns the NetCDF variable storing a substance.
func (md *MetaData) SubstanceVariable(substance string) (string, bool) {
	if md.internal() == nil {
		return "", false
	}
	v, ok := md.m.SubstancesMapping[substance]
	return v, ok
}

// Locations returns the observation point names of a history file.
func (md *MetaData) Locations() []string {
	if md.internal() == nil {
		return nil
	}
	return md.m.Locations
}

// T0 returns the reference time of the file.
func (md *MetaData) T0() time.Time {
	if md.internal() == nil {
		return time.Time{}
	}
	return md.m.T0
}

// Times returns one timestamp per timestep.
func (md *MetaData) Times() []time.Time {
	if md.internal() == nil {
		return nil
	}
	return md.m.Times
}

func (md *MetaData) NumberOfSubstances() int {
	if md.internal() == nil {
		return 0
	}
	return md.m.NumberOfSubstances
}

// NumberOfSegments returns the number of segments (map) or observation
// points (history).
func (md *MetaData) NumberOfSegments() int {
	if md.internal() == nil {
		return 0
	}
	return md.m.NumberOfSegments
}

func (md *MetaData) NumberOfTimeSteps() int {
	if md.internal() == nil {
		return 0
	}
	return md.m.NumberOfTimeSteps
}

// DataBlockOffset returns the byte offset of the first timestep of a flat
// file.
func (md *MetaData) DataBlockOffset() int64 {
	if md.internal() == nil {
		return 0
	}
	return md.m.DataBlockOffsetInBytes
}

// FillValue returns the NetCDF _FillValue of a substance.
func (md *MetaData) FillValue(substance string) (float64, bool) {
	if md.internal() == nil {
		return 0, false
	}
	v, ok := md.m.FillValues[substance]
	return v, ok
}

// Conventions returns the CF and UGRID versions a NetCDF file declares.
// Flat files declare none.
func (md *MetaData) Conventions() (cf, ugrid string) {
	if md.internal() == nil {
		return "", ""
	}
	return md.m.CFVersion, md.m.UGRIDVersion
}

// TimeIndex returns the timestep index of t, or -1.
func (md *MetaData) TimeIndex(t time.Time) int {
	return md.internal().TimeIndex(t)
}

// SubstanceIndex returns the parameter index of a substance, or -1.
func (md *MetaData) SubstanceIndex(substance string) int {
	return md.internal().SubstanceIndex(substance)
}

// LocationIndex returns the index of an observation point, or -1.
func (md *MetaData) LocationIndex(name string) int {
	return md.internal().LocationIndex(name)
}

// TrailingBytes returns the number of bytes after the last whole timestep
// of a flat file of the given size. Non-zero means the file is truncated or
// still being written.
func (md *MetaData) TrailingBytes(fileSize int64) int64 {
	return layout.TrailingBytes(md.internal(), fileSize)
}
