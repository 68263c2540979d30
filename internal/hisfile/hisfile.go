// Package hisfile decodes a whole flat Delwaq history file in one pass.
//
// History values are interleaved per timestep (every output variable of
// every observation point) and the file keeps no offset table, so the
// decoder reads it linearly and hands back one time series per point.
package hisfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/beetlebugorg/delwaq/internal/layout"
)

// Data is the time series of one observation point.
type Data struct {
	// ObservationVariable is the name of the observation point.
	ObservationVariable string

	// OutputVariables lists the recorded variable names. The slice is shared
	// by every Data decoded from the same file.
	OutputVariables []string

	times  []time.Time
	values map[time.Time][]float64
}

// NewData creates an empty series for one observation point.
func NewData(observationVariable string, outputVariables []string) *Data {
	return &Data{
		ObservationVariable: observationVariable,
		OutputVariables:     outputVariables,
		values:              make(map[time.Time][]float64),
	}
}

// AddValue appends the next value for timestamp t. Values must be added in
// output-variable order.
func (d *Data) AddValue(t time.Time, v float64) {
	key := t.UTC()
	vals, ok := d.values[key]
	if !ok {
		d.times = append(d.times, key)
	}
	d.values[key] = append(vals, v)
}

// Times returns the recorded timestamps in the order they were read.
func (d *Data) Times() []time.Time {
	return d.times
}

// NumberOfTimeSteps returns the number of recorded timestamps.
func (d *Data) NumberOfTimeSteps() int {
	return len(d.times)
}

// Values returns the values recorded at t, one per output variable.
func (d *Data) Values(t time.Time) []float64 {
	return d.values[t.UTC()]
}

// Series returns the values of one output variable over all timestamps, or
// nil when the variable is not recorded.
func (d *Data) Series(outputVariable string) []float64 {
	idx := -1
	for i, name := range d.OutputVariables {
		if name == outputVariable {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	series := make([]float64, 0, len(d.times))
	for _, t := range d.times {
		vals := d.values[t]
		if idx < len(vals) {
			series = append(series, vals[idx])
		}
	}
	return series
}

// Read decodes every observation point of a history file.
//
// A missing or zero-length file yields an empty slice and no error. Header
// fields that cannot be decoded are returned as errors.
func Read(path string, logger *slog.Logger) ([]*Data, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		logger.Debug("no history data yet", "path", path)
		return []*Data{}, nil
	}
	size := info.Size()

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

	nOutput, err := readCount(rd, "output variable count")
	if err != nil {
		return nil, err
	}
	nObservation, err := readCount(rd, "observation variable count")
	if err != nil {
		return nil, err
	}
	if err := layout.CheckTable("output variable names", nOutput, layout.NameSize, size-rd.Pos()); err != nil {
		return nil, err
	}
	outputVariables, err := rd.ReadNames(nOutput)
	if err != nil {
		return nil, err
	}

	if rd.Pos() >= size {
		return []*Data{}, nil
	}
	if err := layout.CheckTable("observation points", nObservation,
		layout.LocationNumberSize+layout.NameSize, size-rd.Pos()); err != nil {
		return nil, err
	}
	data := make([]*Data, 0, nObservation)
	for i := 0; i < nObservation; i++ {
		if err := rd.Skip(layout.LocationNumberSize); err != nil {
			return nil, err
		}
		name, err := rd.ReadName()
		if err != nil {
			return nil, err
		}
		data = append(data, NewData(name, outputVariables))
	}

	block := layout.Block{Parameters: nOutput, Locations: nObservation}
	for size-rd.Pos() >= block.Size() {
		seconds, err := rd.ReadInt32()
		if err != nil {
			return nil, err
		}
		t := t0.Add(time.Duration(seconds) * time.Second)
		for _, d := range data {
			for range outputVariables {
				v, err := rd.ReadFloat32()
				if err != nil {
					return nil, err
				}
				d.AddValue(t, float64(v))
			}
		}
	}

	if rest := size - rd.Pos(); rest > 0 {
		logger.Debug("history file ends in a partial record", "path", path, "bytes", rest)
	}
	return data, nil
}

func readCount(rd *layout.Reader, field string) (int, error) {
	n, err := rd.ReadInt32()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, &layout.FormatError{Field: field, Reason: "file ends inside the header"}
		}
		return 0, err
	}
	if n < 0 {
		return 0, &layout.FormatError{Field: field, Reason: fmt.Sprintf("negative value %d", n)}
	}
	return int(n), nil
}
