package delwaq

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Store is a read-only function store over one output file.
//
// It answers variable and filter queries with the random-access readers,
// caches the file's metadata on first use and tracks the running minimum
// and maximum of every parameter over all values it has returned. The
// backend is chosen from the path suffix: _map.nc is NetCDF, .his a flat
// history file and anything else a flat map file.
//
// A Store is not safe for concurrent use.
type Store struct {
	path   string
	opts   StoreOptions
	logger *slog.Logger

	reader    Reader
	meta      *MetaData
	faces     *FaceIndex
	min       map[string]float64
	max       map[string]float64
	listeners []func(*Variable)
}

// NewStore creates a store for path. Nothing is read until the first query.
func NewStore(path string, opts StoreOptions) *Store {
	s := &Store{opts: opts, logger: opts.logger()}
	s.SetPath(path)
	return s
}

// Path returns the file the store reads.
func (s *Store) Path() string {
	return s.path
}

// SetPath switches the store to another file and drops all cached state:
// metadata, running extremes and the face index.
func (s *Store) SetPath(path string) {
	s.path = path
	s.meta = nil
	s.faces = nil
	s.min = make(map[string]float64)
	s.max = make(map[string]float64)

	// Both formats have readers, so NewReader cannot fail here.
	s.reader, _ = NewReader(storeFormat(path), s.opts.ReadOptions)
}

// Format returns the backend format selected for the path.
func (s *Store) Format() Format {
	return s.reader.Format()
}

// OnValuesChanged registers fn to be called when a query widens the
// running minimum or maximum of a variable.
func (s *Store) OnValuesChanged(fn func(*Variable)) {
	s.listeners = append(s.listeners, fn)
}

// MetaData returns the metadata of the file, reading it on first use.
func (s *Store) MetaData() (*MetaData, error) {
	if s.meta != nil {
		return s.meta, nil
	}

	load := func() (*MetaData, error) { return s.reader.ReadMetaData(s.path) }
	var (
		meta *MetaData
		err  error
	)
	if s.opts.Cache != nil {
		meta, err = s.opts.Cache.Get(s.path, s.reader.Format(), load)
	} else {
		meta, err = load()
	}
	if err != nil {
		return nil, err
	}
	s.meta = meta
	return meta, nil
}

func (s *Store) hasValidFile() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return false, nil
	}
	meta, err := s.MetaData()
	if err != nil {
		return false, err
	}
	return meta != nil, nil
}

// GetVariableValues returns the values of v restricted by filters.
//
// Independent variables return their axis: times (at most one TimeFilter
// value), observation point names or segment indices. A dependent
// parameter must have a time argument and yields:
//
//   - over segment indices: a timestep of all segments for a TimeFilter, a
//     time series for an IndexFilter, a single value for both, and nothing
//     without either;
//   - over locations: the same with a LocationFilter, or every timestep of
//     every location when there are no filters;
//   - over time only, in a single-location file: the time series.
//
// Multi-valued or range filters and non-double parameters return
// ErrNotImplemented. A missing file, unknown parameter or unmatched filter
// value returns an empty Array.
func (s *Store) GetVariableValues(v *Variable, filters ...Filter) (*Array, error) {
	ok, err := s.hasValidFile()
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyArray(v.ValueType), nil
	}

	if v.Independent {
		return s.argumentValues(v, filters)
	}

	timeVar := v.Argument(TypeTime)
	if v.ValueType != TypeDouble || timeVar == nil || !singleValued(filters) {
		return nil, fmt.Errorf("%w: query %s (%s) with %d filters", ErrNotImplemented, v.Name, v.ValueType, len(filters))
	}

	param := s.parameterName(v.Name)
	if param == "" {
		return emptyArray(v.ValueType), nil
	}

	timeFilter := findFilter[*TimeFilter](filters, timeVar)

	if indexVar := v.Argument(TypeIndex); indexVar != nil {
		return s.gridValues(v, param, timeFilter, findFilter[*IndexFilter](filters, indexVar))
	}
	if locationVar := v.Argument(TypeLocation); locationVar != nil {
		return s.locationValues(v, param, filters, timeFilter, findFilter[*LocationFilter](filters, locationVar))
	}

	meta, _ := s.MetaData()
	if len(v.Arguments) == 1 && len(filters) == 0 && meta.NumberOfSegments() == 1 {
		data, err := s.query(func() ([]float64, error) {
			return s.reader.GetTimeSeriesData(s.path, meta, param, 0)
		})
		if err != nil || len(data) == 0 {
			return emptyValues(), err
		}
		s.updateMinMax(v, param, data)
		return &Array{Shape: []int{meta.NumberOfTimeSteps()}, Float64s: data}, nil
	}

	return emptyValues(), nil
}

func (s *Store) argumentValues(v *Variable, filters []Filter) (*Array, error) {
	meta, _ := s.MetaData()
	var timeFilter *TimeFilter
	for _, f := range filters {
		if tf, ok := f.(*TimeFilter); ok {
			timeFilter = tf
			break
		}
	}

	switch v.ValueType {
	case TypeTime:
		if timeFilter == nil {
			times := append([]time.Time{}, meta.Times()...)
			return &Array{Shape: []int{len(times)}, Times: times}, nil
		}
		if len(timeFilter.Values) > 1 {
			return nil, fmt.Errorf("%w: %d time filter values", ErrNotImplemented, len(timeFilter.Values))
		}
		times := append([]time.Time{}, timeFilter.Values...)
		return &Array{Shape: []int{len(times)}, Times: times}, nil

	case TypeLocation:
		names := append([]string{}, meta.Locations()...)
		if len(filters) == 1 && timeFilter != nil {
			return &Array{Shape: []int{1, len(names)}, Locations: names}, nil
		}
		if len(filters) == 0 {
			return &Array{Shape: []int{len(names)}, Locations: names}, nil
		}

	case TypeIndex:
		if len(filters) == 0 {
			n := meta.NumberOfSegments()
			indices := make([]int, n)
			for i := range indices {
				indices[i] = i
			}
			return &Array{Shape: []int{n}, Indices: indices}, nil
		}
	}

	return nil, fmt.Errorf("%w: argument %s (%s) with %d filters", ErrNotImplemented, v.Name, v.ValueType, len(filters))
}

func (s *Store) gridValues(v *Variable, param string, timeFilter *TimeFilter, indexFilter *IndexFilter) (*Array, error) {
	if timeFilter == nil && indexFilter == nil {
		return emptyValues(), nil
	}

	segment := AllSegments
	if indexFilter != nil {
		if len(indexFilter.Values) == 0 {
			return emptyValues(), nil
		}
		segment = indexFilter.Values[0]
	}
	return s.sliceValues(v, param, timeFilter, segment)
}

func (s *Store) locationValues(v *Variable, param string, filters []Filter, timeFilter *TimeFilter, locationFilter *LocationFilter) (*Array, error) {
	meta, _ := s.MetaData()

	if len(filters) == 0 {
		steps, locations := meta.NumberOfTimeSteps(), meta.NumberOfSegments()
		values := make([]float64, 0, steps*locations)
		for step := 0; step < steps; step++ {
			data, err := s.query(func() ([]float64, error) {
				return s.reader.GetTimeStepData(s.path, meta, step, param, AllSegments)
			})
			if err != nil {
				return nil, err
			}
			if data == nil {
				return emptyValues(), nil
			}
			values = append(values, data...)
		}
		s.updateMinMax(v, param, values)
		return &Array{Shape: []int{steps, locations}, Float64s: values}, nil
	}

	if timeFilter == nil && locationFilter == nil {
		return emptyValues(), nil
	}

	segment := AllSegments
	if locationFilter != nil {
		if len(locationFilter.Values) == 0 {
			return emptyValues(), nil
		}
		segment = meta.LocationIndex(locationFilter.Values[0])
		if segment < 0 {
			s.logger.Debug("unknown location", "path", s.path, "location", locationFilter.Values[0])
			return emptyValues(), nil
		}
	}
	return s.sliceValues(v, param, timeFilter, segment)
}

// sliceValues reads a timestep when timeFilter is set and a time series
// otherwise.
func (s *Store) sliceValues(v *Variable, param string, timeFilter *TimeFilter, segment int) (*Array, error) {
	meta, _ := s.MetaData()

	timeStep := -1
	if timeFilter != nil {
		if len(timeFilter.Values) == 0 {
			return emptyValues(), nil
		}
		timeStep = meta.TimeIndex(timeFilter.Values[0])
		if timeStep < 0 {
			s.logger.Debug("time not in file", "path", s.path, "time", timeFilter.Values[0])
			return emptyValues(), nil
		}
	}

	var shape []int
	data, err := s.query(func() ([]float64, error) {
		if timeStep >= 0 {
			return s.reader.GetTimeStepData(s.path, meta, timeStep, param, segment)
		}
		return s.reader.GetTimeSeriesData(s.path, meta, param, segment)
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return emptyValues(), nil
	}

	if timeStep >= 0 {
		shape = []int{1, len(data)}
	} else {
		shape = []int{meta.NumberOfTimeSteps(), 1}
	}
	s.updateMinMax(v, param, data)
	return &Array{Shape: shape, Float64s: data}, nil
}

// query runs a backend read and turns the no-data and unknown-substance
// conditions into a nil slice without error.
func (s *Store) query(read func() ([]float64, error)) ([]float64, error) {
	data, err := read()
	if errors.Is(err, ErrNoData) || errors.Is(err, ErrUnknownSubstance) {
		s.logger.Debug("query returned no data", "path", s.path, "error", err)
		return nil, nil
	}
	return data, err
}

func (s *Store) parameterName(variableName string) string {
	if s.opts.ParameterName != nil {
		return s.opts.ParameterName(variableName)
	}
	return variableName
}

func (s *Store) noDataValue(v *Variable, param string) float64 {
	if v.NoDataValue != nil {
		return *v.NoDataValue
	}
	if fill, ok := s.meta.FillValue(param); ok {
		return fill
	}
	return 0
}

// updateMinMax widens the running extremes of param with data and notifies
// listeners if either extreme changed.
func (s *Store) updateMinMax(v *Variable, param string, data []float64) {
	noData := s.noDataValue(v, param)
	valid := make([]float64, 0, len(data))
	for _, x := range data {
		if x != noData {
			valid = append(valid, x)
		}
	}
	if len(valid) == 0 {
		return
	}
	lo, hi := floats.Min(valid), floats.Max(valid)

	changed := false
	if cur, ok := s.min[param]; !ok || lo < cur {
		s.min[param] = lo
		changed = true
	}
	if cur, ok := s.max[param]; !ok || hi > cur {
		s.max[param] = hi
		changed = true
	}
	if !changed {
		return
	}
	for _, fn := range s.listeners {
		fn(v)
	}
}

// MinValue returns the smallest value of v seen so far. When nothing was
// queried yet the first timestep is read; with no data at all it is 0.
func (s *Store) MinValue(v *Variable) (float64, error) {
	return s.extreme(v, s.min, 0)
}

// MaxValue returns the largest value of v seen so far. When nothing was
// queried yet the first timestep is read; with no data at all it is 1.
func (s *Store) MaxValue(v *Variable) (float64, error) {
	return s.extreme(v, s.max, 1)
}

func (s *Store) extreme(v *Variable, values map[string]float64, fallback float64) (float64, error) {
	if v.Independent || v.ValueType != TypeDouble {
		return 0, fmt.Errorf("%w: extremes of %s (%s)", ErrNotImplemented, v.Name, v.ValueType)
	}
	param := s.parameterName(v.Name)
	if x, ok := values[param]; ok {
		return x, nil
	}
	if err := s.primeMinMax(v); err != nil {
		return 0, err
	}
	if x, ok := values[param]; ok {
		return x, nil
	}
	return fallback, nil
}

// primeMinMax queries the first timestep of v.
func (s *Store) primeMinMax(v *Variable) error {
	ok, err := s.hasValidFile()
	if err != nil || !ok {
		return err
	}
	timeVar := v.Argument(TypeTime)
	meta, _ := s.MetaData()
	if timeVar == nil || meta.NumberOfTimeSteps() == 0 {
		return nil
	}
	_, err = s.GetVariableValues(v, &TimeFilter{Variable: timeVar, Values: meta.Times()[:1]})
	return err
}

// TimeRange returns the first and last time of the file, or ErrNoData when
// there are no timesteps.
func (s *Store) TimeRange() (time.Time, time.Time, error) {
	meta, err := s.MetaData()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	times := meta.Times()
	if len(times) == 0 {
		return time.Time{}, time.Time{}, ErrNoData
	}
	return times[0], times[len(times)-1], nil
}

// SegmentsInBounds returns the segments whose face centre lies within b.
// Only NetCDF map files carry face coordinates.
func (s *Store) SegmentsInBounds(b Bounds) ([]int, error) {
	if s.reader.Format() != FormatNetCDFMap {
		return nil, fmt.Errorf("%w: face coordinates in %s files", ErrNotImplemented, s.reader.Format())
	}
	if s.faces == nil {
		idx, err := LoadFaceIndex(s.path, s.opts.ReadOptions)
		if err != nil {
			return nil, err
		}
		s.faces = idx
	}
	return s.faces.SegmentsInBounds(b), nil
}

// CopyTo copies the file to destination. A missing file or a destination
// equal to the current path is a no-op.
func (s *Store) CopyTo(destination string) error {
	if s.path == destination {
		return nil
	}
	src, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	dst, err := os.Create(destination)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", s.path, err)
	}
	return dst.Close()
}

// SetVariableValues always returns ErrReadOnly.
func (s *Store) SetVariableValues(v *Variable, values any, filters ...Filter) error {
	return ErrReadOnly
}

// RemoveFunctionValues always returns ErrReadOnly.
func (s *Store) RemoveFunctionValues(v *Variable, filters ...Filter) error {
	return ErrReadOnly
}

// AddIndependentVariableValues always returns ErrReadOnly.
func (s *Store) AddIndependentVariableValues(v *Variable, values any) error {
	return ErrReadOnly
}

// UpdateVariableSize always returns ErrReadOnly.
func (s *Store) UpdateVariableSize(v *Variable) error {
	return ErrReadOnly
}

// CacheVariable always returns ErrReadOnly.
func (s *Store) CacheVariable(v *Variable) error {
	return ErrReadOnly
}

func singleValued(filters []Filter) bool {
	for _, f := range filters {
		if n := valueCount(f); n < 0 || n > 1 {
			return false
		}
	}
	return true
}

// findFilter returns the first filter of type F defined on v.
func findFilter[F Filter](filters []Filter, v *Variable) F {
	var zero F
	for _, f := range filters {
		if typed, ok := f.(F); ok && f.FilterVariable() == v {
			return typed
		}
	}
	return zero
}
