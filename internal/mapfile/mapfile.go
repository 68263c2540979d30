// Package mapfile decodes flat Delwaq map (.map) and history (.his) files
// with direct seeks into the fixed-stride timestep blocks.
//
// Every query opens its own read-only handle and closes it before returning.
// The simulation engine may still be appending to the file, so no handle is
// kept between calls.
package mapfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beetlebugorg/delwaq/internal/layout"
)

// AllSegments selects every segment of a timestep.
const AllSegments = -1

// Kind selects the header variant of a flat file.
type Kind int

const (
	// KindMap is a map file: substances x segments.
	KindMap Kind = iota
	// KindHistory is a history file: output variables x observation points,
	// with a location name table after the parameter names.
	KindHistory
)

// String returns the file extension associated with the kind.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindHistory:
		return "his"
	default:
		return "unknown"
	}
}

// KindForPath selects KindHistory for .his files and KindMap otherwise.
func KindForPath(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".his") {
		return KindHistory
	}
	return KindMap
}

// Reader decodes one kind of flat file.
type Reader struct {
	kind   Kind
	logger *slog.Logger
}

// New creates a reader for the given kind. A nil logger uses slog.Default().
func New(kind Kind, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{kind: kind, logger: logger}
}

// Kind returns the header variant the reader decodes.
func (r *Reader) Kind() Kind {
	return r.kind
}

// ReadMetaData parses the header region and scans the timestamps of every
// whole timestep block without reading the payload.
//
// A missing or zero-length file yields empty metadata and no error.
// The timestep count is derived from the file length by integer division,
// so a trailing partial block is dropped silently.
func (r *Reader) ReadMetaData(path string) (*layout.MetaData, error) {
	size, ok := dataSize(path)
	if !ok {
		r.logger.Debug("no output data yet", "path", path, "kind", r.kind.String())
		return &layout.MetaData{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rd := layout.NewReader(f)
	if err := rd.Skip(layout.HeaderSkip); err != nil {
		return nil, err
	}
	line, err := rd.ReadBytes(layout.HeaderTextSize)
	if err != nil {
		return nil, err
	}
	t0, err := layout.ParseT0(line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	nSubstances, err := readCount(rd, "substance count")
	if err != nil {
		return nil, err
	}
	nSegments, err := readCount(rd, "segment count")
	if err != nil {
		return nil, err
	}

	if need := layout.HeaderSize(nSubstances, nSegments, r.kind == KindHistory); need > size {
		return nil, &layout.FormatError{
			Field:  "header",
			Reason: fmt.Sprintf("name tables need %d bytes, file has %d", need, size),
		}
	}

	substances, err := rd.ReadNames(nSubstances)
	if err != nil {
		return nil, err
	}

	var locations []string
	if r.kind == KindHistory {
		locations = make([]string, 0, nSegments)
		for i := 0; i < nSegments; i++ {
			if err := rd.Skip(layout.LocationNumberSize); err != nil {
				return nil, err
			}
			name, err := rd.ReadName()
			if err != nil {
				return nil, err
			}
			locations = append(locations, name)
		}
	}

	meta := &layout.MetaData{
		Substances:             substances,
		Locations:              locations,
		T0:                     t0,
		NumberOfSubstances:     nSubstances,
		NumberOfSegments:       nSegments,
		DataBlockOffsetInBytes: rd.Pos(),
	}

	block := meta.Block()
	if remaining := size - meta.DataBlockOffsetInBytes; remaining > 0 {
		meta.NumberOfTimeSteps = int(remaining / block.Size())
	}

	meta.Times = make([]time.Time, 0, meta.NumberOfTimeSteps)
	for i := 0; i < meta.NumberOfTimeSteps; i++ {
		seconds, err := rd.ReadInt32()
		if err != nil {
			return nil, err
		}
		meta.Times = append(meta.Times, t0.Add(time.Duration(seconds)*time.Second))
		if err := rd.Skip(block.Size() - layout.TimeStampSize); err != nil {
			return nil, err
		}
	}

	return meta, nil
}

// GetTimeStepData returns the values of one substance at one timestep.
//
// With segment == AllSegments one value per segment is returned; otherwise
// the single value of that segment. ErrUnknownSubstance is returned when the
// substance is not in the metadata and ErrNoData when the file is missing or
// empty; the slice is nil in both cases.
func (r *Reader) GetTimeStepData(path string, meta *layout.MetaData, timeStep int, substance string, segment int) ([]float64, error) {
	substanceIndex := meta.SubstanceIndex(substance)
	if substanceIndex < 0 {
		return nil, fmt.Errorf("%w: %q", layout.ErrUnknownSubstance, substance)
	}
	if _, ok := dataSize(path); !ok {
		r.logger.Debug("no output data yet", "path", path)
		return nil, layout.ErrNoData
	}
	if err := meta.ValidateTimeStep(timeStep); err != nil {
		return nil, err
	}
	if err := meta.ValidateSegment(segment, true); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rd := layout.NewReader(f)
	block := meta.Block()
	offset := meta.DataBlockOffsetInBytes

	if segment != AllSegments {
		if err := rd.SeekTo(block.Offset(offset, timeStep, substanceIndex, segment)); err != nil {
			return nil, err
		}
		v, err := rd.ReadFloat32()
		if err != nil {
			return nil, err
		}
		return []float64{float64(v)}, nil
	}

	values := make([]float64, 0, meta.NumberOfSegments)
	if err := rd.SeekTo(block.Offset(offset, timeStep, substanceIndex, 0)); err != nil {
		return nil, err
	}
	for seg := 0; seg < meta.NumberOfSegments; seg++ {
		if seg > 0 {
			if err := rd.Skip(block.LocationStride() - layout.ValueSize); err != nil {
				return nil, err
			}
		}
		v, err := rd.ReadFloat32()
		if err != nil {
			return nil, err
		}
		values = append(values, float64(v))
	}
	return values, nil
}

// GetTimeSeriesData returns the value of one substance at one segment for
// every timestep.
func (r *Reader) GetTimeSeriesData(path string, meta *layout.MetaData, substance string, segment int) ([]float64, error) {
	substanceIndex := meta.SubstanceIndex(substance)
	if substanceIndex < 0 {
		return nil, fmt.Errorf("%w: %q", layout.ErrUnknownSubstance, substance)
	}
	if _, ok := dataSize(path); !ok {
		r.logger.Debug("no output data yet", "path", path)
		return nil, layout.ErrNoData
	}
	if err := meta.ValidateSegment(segment, false); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rd := layout.NewReader(f)
	block := meta.Block()

	values := make([]float64, 0, meta.NumberOfTimeSteps)
	if meta.NumberOfTimeSteps == 0 {
		return values, nil
	}
	if err := rd.SeekTo(block.Offset(meta.DataBlockOffsetInBytes, 0, substanceIndex, segment)); err != nil {
		return nil, err
	}
	for step := 0; step < meta.NumberOfTimeSteps; step++ {
		if step > 0 {
			if err := rd.Skip(block.Size() - layout.ValueSize); err != nil {
				return nil, err
			}
		}
		v, err := rd.ReadFloat32()
		if err != nil {
			return nil, err
		}
		values = append(values, float64(v))
	}
	return values, nil
}

// dataSize reports the file size, and false when the file is missing or has
// zero length.
func dataSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return 0, false
	}
	return info.Size(), true
}

func readCount(rd *layout.Reader, field string) (int, error) {
	n, err := rd.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &layout.FormatError{Field: field, Reason: fmt.Sprintf("negative value %d", n)}
	}
	return int(n), nil
}
