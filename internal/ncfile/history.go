package ncfile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/beetlebugorg/delwaq/internal/hisfile"
	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

// historyOutput is one delwaq_name variable over time and station.
type historyOutput struct {
	name   string
	values []float64
	// timeMajor is set when the time dimension precedes the station
	// dimension.
	timeMajor bool
}

// ReadHistory decodes a NetCDF history file into one series per station.
//
// Stations are the rows of the cf_role = timeseries_id variable. Output
// variables are the delwaq_name variables defined over both the time and
// the station dimension. A missing or empty file, or one without a time or
// station variable, yields an empty slice and no error.
func (r *Reader) ReadHistory(path string) ([]*hisfile.Data, error) {
	if !exists(path) {
		r.logger.Debug("no history data yet", "path", path)
		return []*hisfile.Data{}, nil
	}

	ds, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	times, timeDim, err := ncutil.ReadTimes(ds)
	if errors.Is(err, ncutil.ErrNoTimeVariable) {
		r.logger.Warn("no time variable", "path", path)
		return []*hisfile.Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	stationVar, ok := ncutil.FindByAttribute(ds, "cf_role", "timeseries_id")
	if !ok || len(stationVar.Dimensions()) == 0 {
		r.logger.Warn("no station variable", "path", path)
		return []*hisfile.Data{}, nil
	}
	stations, err := stationVar.ReadStrings()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	stationDim := stationVar.Dimensions()[0]

	var outputs []historyOutput
	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, err
		}
		delwaqName, ok := ncutil.AttributeString(v, "delwaq_name")
		if !ok {
			continue
		}
		dims := v.Dimensions()
		ti, si := slices.Index(dims, timeDim), slices.Index(dims, stationDim)
		if ti < 0 || si < 0 {
			continue
		}

		lengths, err := ncutil.Lengths(ds, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		origin, shape := ncutil.Hyperslab(dims, lengths, map[string]int{
			timeDim:    ncutil.All,
			stationDim: ncutil.All,
		})
		values, err := v.Read(origin, shape)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		outputs = append(outputs, historyOutput{
			name:      LogicalName(delwaqName),
			values:    values,
			timeMajor: ti < si,
		})
	}

	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.name
	}

	nTimes, nStations := len(times), len(stations)
	data := make([]*hisfile.Data, 0, nStations)
	for s, station := range stations {
		d := hisfile.NewData(station, outputNames)
		for t, ts := range times {
			for _, o := range outputs {
				idx := s*nTimes + t
				if o.timeMajor {
					idx = t*nStations + s
				}
				if idx >= len(o.values) {
					return nil, fmt.Errorf("%s: output %s has %d values, need %d x %d",
						path, o.name, len(o.values), nTimes, nStations)
				}
				d.AddValue(ts, o.values[idx])
			}
		}
		data = append(data, d)
	}
	return data, nil
}
