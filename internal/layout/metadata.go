package layout

import "time"

// MetaData describes the invariant structure of one map or history file.
//
// It is built once per file by a metadata reader and passed, unchanged, into
// every subsequent query against that file.
type MetaData struct {
	// Substances lists the parameter names in file order. The position of a
	// name is its parameter index.
	Substances []string

	// SubstancesMapping maps a logical substance name to the variable that
	// stores it. Only NetCDF files set it.
	SubstancesMapping map[string]string

	// Locations lists the observation point names of a history file.
	Locations []string

	// T0 is the reference time all timestep offsets are measured from.
	T0 time.Time

	// Times holds one timestamp per timestep, ascending.
	Times []time.Time

	NumberOfSubstances int
	NumberOfSegments   int
	NumberOfTimeSteps  int

	// DataBlockOffsetInBytes is the offset of the first timestep block of a
	// flat file.
	DataBlockOffsetInBytes int64

	// TimeDimension and FaceDimension name the NetCDF dimensions that play
	// the role of the timestep and segment axes.
	TimeDimension string
	FaceDimension string

	// FillValues holds the _FillValue of each NetCDF substance variable.
	FillValues map[string]float64

	// CFVersion and UGRIDVersion come from the NetCDF Conventions attribute.
	// Empty means the convention is not declared.
	CFVersion    string
	UGRIDVersion string
}

// Empty reports whether the metadata describes no data at all.
func (m *MetaData) Empty() bool {
	return m == nil || (m.NumberOfTimeSteps == 0 && len(m.Substances) == 0)
}

// SubstanceIndex returns the parameter index of a substance, or -1.
func (m *MetaData) SubstanceIndex(name string) int {
	if m == nil {
		return -1
	}
	for i, s := range m.Substances {
		if s == name {
			return i
		}
	}
	return -1
}

// TimeIndex returns the index of t in Times, or -1.
func (m *MetaData) TimeIndex(t time.Time) int {
	if m == nil {
		return -1
	}
	for i, mt := range m.Times {
		if mt.Equal(t) {
			return i
		}
	}
	return -1
}

// LocationIndex returns the index of a history location name, or -1.
func (m *MetaData) LocationIndex(name string) int {
	if m == nil {
		return -1
	}
	for i, l := range m.Locations {
		if l == name {
			return i
		}
	}
	return -1
}

// Block returns the timestep block stride of a flat file.
func (m *MetaData) Block() Block {
	return Block{Parameters: m.NumberOfSubstances, Locations: m.NumberOfSegments}
}

// ValidateTimeStep checks that a timestep index addresses an existing block.
func (m *MetaData) ValidateTimeStep(timeStep int) error {
	if timeStep < 0 || timeStep >= m.NumberOfTimeSteps {
		return &IndexError{Kind: IndexTimeStep, Index: timeStep, Limit: m.NumberOfTimeSteps}
	}
	return nil
}

// ValidateSegment checks a segment index. When allowAll is set, -1 selects
// every segment and is accepted.
func (m *MetaData) ValidateSegment(segment int, allowAll bool) error {
	if allowAll && segment == -1 {
		return nil
	}
	if segment < 0 || segment >= m.NumberOfSegments {
		return &IndexError{Kind: IndexSegment, Index: segment, Limit: m.NumberOfSegments}
	}
	return nil
}

// TrailingBytes returns the number of bytes after the last whole timestep
// block of a flat file of the given size.
//
// The metadata reader derives the timestep count by integer division and
// drops a trailing partial block without reporting it. A non-zero result
// means a truncated or still-growing file.
func TrailingBytes(m *MetaData, fileSize int64) int64 {
	if m == nil || m.DataBlockOffsetInBytes == 0 {
		return 0
	}
	rest := fileSize - m.DataBlockOffsetInBytes - int64(m.NumberOfTimeSteps)*m.Block().Size()
	if rest < 0 {
		return 0
	}
	return rest
}
