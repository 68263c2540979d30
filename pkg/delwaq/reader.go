package delwaq

import (
	"fmt"

	"github.com/beetlebugorg/delwaq/internal/mapfile"
	"github.com/beetlebugorg/delwaq/internal/ncfile"
)

// AllSegments selects every segment in GetTimeStepData.
const AllSegments = mapfile.AllSegments

// Reader decodes one output format with random access.
//
// Value queries return ErrUnknownSubstance for a substance not in the
// metadata, ErrNoData for a missing or empty file and *IndexError for an
// index outside the metadata range. The returned slice is nil whenever the
// error is non-nil.
type Reader interface {
	// Format returns the format the reader decodes.
	Format() Format

	// ReadMetaData reads the header of a file. A missing or empty file
	// yields empty metadata and no error.
	ReadMetaData(path string) (*MetaData, error)

	// GetTimeStepData returns the values of a substance at one timestep,
	// for one segment or for AllSegments.
	GetTimeStepData(path string, meta *MetaData, timeStep int, substance string, segment int) ([]float64, error)

	// GetTimeSeriesData returns the value of a substance at one segment for
	// every timestep.
	GetTimeSeriesData(path string, meta *MetaData, substance string, segment int) ([]float64, error)
}

// NewReader creates a reader for the given format.
func NewReader(format Format, opts ReadOptions) (Reader, error) {
	switch format {
	case FormatMap:
		return &flatReader{format: format, r: mapfile.New(mapfile.KindMap, opts.logger())}, nil
	case FormatHistory:
		return &flatReader{format: format, r: mapfile.New(mapfile.KindHistory, opts.logger())}, nil
	case FormatNetCDFMap, FormatNetCDFHistory:
		return &netcdfReader{format: format, r: ncfile.New(opts.OpenDataset, opts.logger())}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// NewReaderForPath creates a reader for the format named by the path suffix.
func NewReaderForPath(path string, opts ReadOptions) (Reader, error) {
	r, err := NewReader(DetectFormat(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

type flatReader struct {
	format Format
	r      *mapfile.Reader
}

func (f *flatReader) Format() Format { return f.format }

func (f *flatReader) ReadMetaData(path string) (*MetaData, error) {
	m, err := f.r.ReadMetaData(path)
	if err != nil {
		return nil, err
	}
	return newMetaData(m), nil
}

func (f *flatReader) GetTimeStepData(path string, meta *MetaData, timeStep int, substance string, segment int) ([]float64, error) {
	return f.r.GetTimeStepData(path, meta.internal(), timeStep, substance, segment)
}

func (f *flatReader) GetTimeSeriesData(path string, meta *MetaData, substance string, segment int) ([]float64, error) {
	return f.r.GetTimeSeriesData(path, meta.internal(), substance, segment)
}

type netcdfReader struct {
	format Format
	r      *ncfile.Reader
}

func (n *netcdfReader) Format() Format { return n.format }

func (n *netcdfReader) ReadMetaData(path string) (*MetaData, error) {
	m, err := n.r.ReadMetaData(path)
	if err != nil {
		return nil, err
	}
	return newMetaData(m), nil
}

func (n *netcdfReader) GetTimeStepData(path string, meta *MetaData, timeStep int, substance string, segment int) ([]float64, error) {
	return n.r.GetTimeStepData(path, meta.internal(), timeStep, substance, segment)
}

func (n *netcdfReader) GetTimeSeriesData(path string, meta *MetaData, substance string, segment int) ([]float64, error) {
	return n.r.GetTimeSeriesData(path, meta.internal(), substance, segment)
}
