package delwaq

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beetlebugorg/delwaq/internal/layout"
	"github.com/beetlebugorg/delwaq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMap(t *testing.T, dir, name string, steps int) string {
	t.Helper()
	offsets := make([]int32, steps)
	for i := range offsets {
		offsets[i] = int32(i * 60)
	}
	return testutil.Write(t, dir, name, testutil.MapFile{
		T0:         t0,
		Substances: []string{"OXY"},
		Segments:   2,
		Offsets:    offsets,
	}.Bytes())
}

func TestMetaDataCache(t *testing.T) {
	dir := t.TempDir()
	path := writeMap(t, dir, "a.map", 2)
	r, err := NewReader(FormatMap, DefaultReadOptions())
	require.NoError(t, err)

	cache := NewMetaDataCache(0)
	loads := 0
	load := func() (*MetaData, error) {
		loads++
		return r.ReadMetaData(path)
	}

	first, err := cache.Get(path, FormatMap, load)
	require.NoError(t, err)
	second, err := cache.Get(path, FormatMap, load)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	// the simulation appends a timestep
	writeMap(t, dir, "a.map", 3)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := cache.Get(path, FormatMap, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 3, third.NumberOfTimeSteps())

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
}

func TestMetaDataCacheEviction(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReader(FormatMap, DefaultReadOptions())
	require.NoError(t, err)
	cache := NewMetaDataCache(2)

	var paths []string
	for _, name := range []string{"a.map", "b.map", "c.map"} {
		p := writeMap(t, dir, name, 1)
		paths = append(paths, p)
		_, err := cache.Get(p, FormatMap, func() (*MetaData, error) { return r.ReadMetaData(p) })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Stats().Entries)

	// a.map was evicted
	loaded := false
	_, err = cache.Get(paths[0], FormatMap, func() (*MetaData, error) {
		loaded = true
		return r.ReadMetaData(paths[0])
	})
	require.NoError(t, err)
	assert.True(t, loaded)

	cache.Remove(paths[0])
	assert.Equal(t, 1, cache.Stats().Entries)
	cache.Clear()
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestMetaDataCacheSeparatesFormats(t *testing.T) {
	dir := t.TempDir()
	path := testutil.Write(t, dir, "model_his.nc", testutil.MapFile{
		T0:         t0,
		Substances: []string{"OXY"},
		Segments:   2,
		Offsets:    []int32{0},
	}.Bytes())
	cache := NewMetaDataCache(0)

	flat := NewStore(path, StoreOptions{ReadOptions: DefaultReadOptions(), Cache: cache})
	require.Equal(t, FormatMap, flat.Format())
	flatMeta, err := flat.MetaData()
	require.NoError(t, err)
	require.False(t, flatMeta.Empty())

	netcdfLoads := 0
	other, err := cache.Get(path, FormatNetCDFHistory, func() (*MetaData, error) {
		netcdfLoads++
		return newMetaData(&layout.MetaData{Substances: []string{"salinity"}}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, netcdfLoads)
	assert.Equal(t, []string{"salinity"}, other.Substances())
	assert.Equal(t, 2, cache.Stats().Entries)

	again, err := cache.Get(path, FormatMap, func() (*MetaData, error) {
		t.Fatal("flat metadata should come from the cache")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, flatMeta, again)

	cache.Remove(path)
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestMetaDataCacheSkipsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.map")
	r, err := NewReader(FormatMap, DefaultReadOptions())
	require.NoError(t, err)
	cache := NewMetaDataCache(0)

	meta, err := cache.Get(path, FormatMap, func() (*MetaData, error) { return r.ReadMetaData(path) })
	require.NoError(t, err)
	assert.True(t, meta.Empty())
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestDiscoverOutputs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "run1", "output"), 0o755))
	for _, name := range []string{
		"run1/output/model.map",
		"run1/output/model.his",
		"run1/output/model_map.nc",
		"run1/output/model_his.nc",
		"run1/model.inp",
		"notes.txt",
	} {
		testutil.Write(t, root, name, []byte("x"))
	}

	outputs, err := DiscoverOutputs(root)
	require.NoError(t, err)
	require.Len(t, outputs, 4)

	formats := map[Format]string{}
	for _, o := range outputs {
		formats[o.Format] = filepath.Base(o.Path)
	}
	assert.Equal(t, map[Format]string{
		FormatMap:           "model.map",
		FormatHistory:       "model.his",
		FormatNetCDFMap:     "model_map.nc",
		FormatNetCDFHistory: "model_his.nc",
	}, formats)

	_, err = DiscoverOutputs(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
