package delwaq

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/beetlebugorg/delwaq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type gridVariables struct {
	time, segment, oxy *Variable
}

func newGridVariables() gridVariables {
	tv := &Variable{Name: "time", ValueType: TypeTime, Independent: true}
	sv := &Variable{Name: "segment", ValueType: TypeIndex, Independent: true}
	return gridVariables{
		time:    tv,
		segment: sv,
		oxy:     &Variable{Name: "OXY", ValueType: TypeDouble, Arguments: []*Variable{tv, sv}},
	}
}

func writeMapFile(t *testing.T) string {
	t.Helper()
	return testutil.Write(t, t.TempDir(), "model.map", testutil.MapFile{
		T0:         t0,
		Substances: []string{"OXY", "TEMP"},
		Segments:   3,
		Offsets:    []int32{0, 3600},
	}.Bytes())
}

func slot(step, param, loc int) float64 {
	return float64(testutil.SlotValue(step, param, loc))
}

func TestStoreArguments(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	vars := newGridVariables()

	times, err := store.GetVariableValues(vars.time)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, times.Shape)
	assert.True(t, times.Times[1].Equal(t0.Add(time.Hour)))

	one, err := store.GetVariableValues(vars.time, &TimeFilter{Variable: vars.time, Values: []time.Time{t0}})
	require.NoError(t, err)
	assert.Equal(t, 1, one.Len())

	_, err = store.GetVariableValues(vars.time, &TimeFilter{Variable: vars.time, Values: []time.Time{t0, t0}})
	assert.True(t, errors.Is(err, ErrNotImplemented))

	indices, err := store.GetVariableValues(vars.segment)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indices.Indices)

	_, err = store.GetVariableValues(vars.segment, &IndexFilter{Variable: vars.segment, Values: []int{1}})
	assert.True(t, errors.Is(err, ErrNotImplemented))
}

func TestStoreGridQueries(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	vars := newGridVariables()
	at := func(step int) *TimeFilter {
		return &TimeFilter{Variable: vars.time, Values: []time.Time{t0.Add(time.Duration(step) * time.Hour)}}
	}
	seg := func(i int) *IndexFilter {
		return &IndexFilter{Variable: vars.segment, Values: []int{i}}
	}

	tests := []struct {
		name    string
		filters []Filter
		shape   []int
		values  []float64
	}{
		{"timestep", []Filter{at(1)}, []int{1, 3}, []float64{slot(1, 0, 0), slot(1, 0, 1), slot(1, 0, 2)}},
		{"time series", []Filter{seg(2)}, []int{2, 1}, []float64{slot(0, 0, 2), slot(1, 0, 2)}},
		{"single point", []Filter{at(1), seg(1)}, []int{1, 1}, []float64{slot(1, 0, 1)}},
		{"no filters", nil, []int{0, 0}, []float64{}},
		{"time not in file", []Filter{at(5)}, []int{0, 0}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetVariableValues(vars.oxy, tt.filters...)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, got.Shape)
			assert.Equal(t, tt.values, got.Float64s)
		})
	}
}

func TestStoreContractViolations(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	vars := newGridVariables()

	tests := []struct {
		name    string
		v       *Variable
		filters []Filter
	}{
		{"multi-valued filter", vars.oxy, []Filter{&IndexFilter{Variable: vars.segment, Values: []int{0, 1}}}},
		{"range filter", vars.oxy, []Filter{&IndexRangeFilter{Variable: vars.segment, Min: 0, Max: 2}}},
		{"no time argument", &Variable{Name: "OXY", ValueType: TypeDouble, Arguments: []*Variable{vars.segment}}, nil},
		{"not a double", &Variable{Name: "OXY", ValueType: TypeIndex, Arguments: []*Variable{vars.time}}, nil},
		{"location argument with filter", &Variable{Name: "x", ValueType: TypeLocation, Independent: true},
			[]Filter{&IndexFilter{Variable: vars.segment, Values: []int{0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.GetVariableValues(tt.v, tt.filters...)
			assert.True(t, errors.Is(err, ErrNotImplemented), "got %v", err)
		})
	}
}

func TestStoreEmptyResults(t *testing.T) {
	vars := newGridVariables()

	missing := NewStore(filepath.Join(t.TempDir(), "none.map"), DefaultStoreOptions())
	got, err := missing.GetVariableValues(vars.time)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.NotNil(t, got.Times)

	got, err = missing.GetVariableValues(vars.oxy, &IndexFilter{Variable: vars.segment, Values: []int{0}})
	require.NoError(t, err)
	assert.Empty(t, got.Float64s)

	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	salt := &Variable{Name: "SALT", ValueType: TypeDouble, Arguments: []*Variable{vars.time, vars.segment}}
	got, err = store.GetVariableValues(salt, &IndexFilter{Variable: vars.segment, Values: []int{0}})
	require.NoError(t, err)
	assert.Empty(t, got.Float64s)
}

func TestStoreParameterName(t *testing.T) {
	opts := DefaultStoreOptions()
	opts.ParameterName = func(name string) string {
		if name == "Dissolved oxygen" {
			return "OXY"
		}
		return ""
	}
	store := NewStore(writeMapFile(t), opts)
	vars := newGridVariables()
	oxygen := &Variable{Name: "Dissolved oxygen", ValueType: TypeDouble, Arguments: vars.oxy.Arguments}

	got, err := store.GetVariableValues(oxygen, &IndexFilter{Variable: vars.segment, Values: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{slot(0, 0, 1), slot(1, 0, 1)}, got.Float64s)

	got, err = store.GetVariableValues(vars.oxy, &IndexFilter{Variable: vars.segment, Values: []int{1}})
	require.NoError(t, err)
	assert.Empty(t, got.Float64s)
}

func TestStoreMinMaxIdempotent(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	vars := newGridVariables()

	notified := 0
	store.OnValuesChanged(func(v *Variable) {
		assert.Same(t, vars.oxy, v)
		notified++
	})

	filter := &TimeFilter{Variable: vars.time, Values: []time.Time{t0.Add(time.Hour)}}
	for i := 0; i < 2; i++ {
		_, err := store.GetVariableValues(vars.oxy, filter)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, notified)

	lo, err := store.MinValue(vars.oxy)
	require.NoError(t, err)
	hi, err := store.MaxValue(vars.oxy)
	require.NoError(t, err)
	assert.Equal(t, slot(1, 0, 0), lo)
	assert.Equal(t, slot(1, 0, 2), hi)

	// timestep 0 widens the minimum
	_, err = store.GetVariableValues(vars.oxy, &TimeFilter{Variable: vars.time, Values: []time.Time{t0}})
	require.NoError(t, err)
	assert.Equal(t, 2, notified)
}

func TestStoreMinMaxSkipsNoData(t *testing.T) {
	vars := newGridVariables()

	// SlotValue(0, 0, 0) is 0, the default no-data value
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	lo, err := store.MinValue(vars.oxy)
	require.NoError(t, err)
	assert.Equal(t, slot(0, 0, 1), lo)

	noData := slot(0, 0, 2)
	custom := &Variable{Name: "OXY", ValueType: TypeDouble, Arguments: vars.oxy.Arguments, NoDataValue: &noData}
	store = NewStore(writeMapFile(t), DefaultStoreOptions())
	hi, err := store.MaxValue(custom)
	require.NoError(t, err)
	assert.Equal(t, slot(0, 0, 1), hi)
	lo, err = store.MinValue(custom)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
}

func TestStoreMinMaxDefaults(t *testing.T) {
	vars := newGridVariables()
	store := NewStore(filepath.Join(t.TempDir(), "none.map"), DefaultStoreOptions())

	lo, err := store.MinValue(vars.oxy)
	require.NoError(t, err)
	hi, err := store.MaxValue(vars.oxy)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	_, err = store.MinValue(vars.time)
	assert.True(t, errors.Is(err, ErrNotImplemented))
}

func TestStoreSetPath(t *testing.T) {
	vars := newGridVariables()
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	_, err := store.MaxValue(vars.oxy)
	require.NoError(t, err)

	his := testutil.Write(t, t.TempDir(), "model.his", testutil.HisFile{
		T0:              t0,
		OutputVariables: []string{"OXY"},
		Locations:       []string{"P1"},
		Offsets:         []int32{0, 60, 120},
		Value:           func(step, output, location int) float32 { return float32(-step - 1) },
	}.Bytes())
	store.SetPath(his)
	assert.Equal(t, his, store.Path())
	assert.Equal(t, FormatHistory, store.Format())

	meta, err := store.MetaData()
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, meta.Locations())

	series := &Variable{Name: "OXY", ValueType: TypeDouble, Arguments: []*Variable{vars.time}}
	got, err := store.GetVariableValues(series)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.Shape)
	assert.Equal(t, []float64{-1, -2, -3}, got.Float64s)

	hi, err := store.MaxValue(series)
	require.NoError(t, err)
	assert.Equal(t, -1.0, hi)
}

func TestStoreTimeRange(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	first, last, err := store.TimeRange()
	require.NoError(t, err)
	assert.True(t, first.Equal(t0))
	assert.True(t, last.Equal(t0.Add(time.Hour)))

	_, _, err = NewStore(filepath.Join(t.TempDir(), "none.map"), DefaultStoreOptions()).TimeRange()
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestStoreReadOnly(t *testing.T) {
	store := NewStore(writeMapFile(t), DefaultStoreOptions())
	vars := newGridVariables()

	assert.ErrorIs(t, store.SetVariableValues(vars.oxy, []float64{1}), ErrReadOnly)
	assert.ErrorIs(t, store.RemoveFunctionValues(vars.oxy), ErrReadOnly)
	assert.ErrorIs(t, store.AddIndependentVariableValues(vars.time, []time.Time{t0}), ErrReadOnly)
	assert.ErrorIs(t, store.UpdateVariableSize(vars.oxy), ErrReadOnly)
	assert.ErrorIs(t, store.CacheVariable(vars.oxy), ErrReadOnly)
}

func TestStoreCopyTo(t *testing.T) {
	path := writeMapFile(t)
	store := NewStore(path, DefaultStoreOptions())

	dest := filepath.Join(t.TempDir(), "copy", "model.map")
	require.NoError(t, store.CopyTo(dest))

	copied := NewStore(dest, DefaultStoreOptions())
	meta, err := copied.MetaData()
	require.NoError(t, err)
	assert.Equal(t, 2, meta.NumberOfTimeSteps())

	require.NoError(t, store.CopyTo(path))
	require.NoError(t, NewStore(filepath.Join(t.TempDir(), "none.map"), DefaultStoreOptions()).CopyTo(dest))
}

func TestStoreSharedCache(t *testing.T) {
	path := writeMapFile(t)
	opts := DefaultStoreOptions()
	opts.Cache = NewMetaDataCache(4)

	first, err := NewStore(path, opts).MetaData()
	require.NoError(t, err)
	second, err := NewStore(path, opts).MetaData()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, opts.Cache.Stats().Hits)
}
