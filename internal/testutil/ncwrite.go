package testutil

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

// WriteNetCDF writes ds to dir/name as a real NetCDF file of the given kind
// and returns the path. Scalars are written as int32, one-dimensional
// variables as float64 and two-dimensional variables as float32, the way
// Delwaq stores substance fields. Character variables are not supported.
func WriteNetCDF(t testing.TB, dir, name string, kind netcdf.FileKind, ds *ncutil.MemDataset) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := netcdf.OpenWriter(path, kind)
	if err != nil {
		t.Fatalf("open writer %s: %v", path, err)
	}
	if len(ds.Attrs) > 0 {
		if err := w.AddAttributes(orderedAttributes(t, ds.Attrs)); err != nil {
			t.Fatalf("global attributes: %v", err)
		}
	}

	for _, v := range ds.Vars {
		if v.Strings != nil {
			t.Fatalf("variable %s: character arrays are not supported", v.VarName)
		}
		var values any
		switch len(v.Dims) {
		case 0:
			values = int32(0)
		case 1:
			values = v.Data
		case 2:
			rows, cols := ds.Dims[v.Dims[0]], ds.Dims[v.Dims[1]]
			if len(v.Data) != rows*cols {
				t.Fatalf("variable %s: %d values for %dx%d", v.VarName, len(v.Data), rows, cols)
			}
			grid := make([][]float32, rows)
			for i := range grid {
				grid[i] = make([]float32, cols)
				for j := range grid[i] {
					grid[i][j] = float32(v.Data[i*cols+j])
				}
			}
			values = grid
		default:
			t.Fatalf("variable %s: %d dimensions", v.VarName, len(v.Dims))
		}
		err := w.AddVar(v.VarName, api.Variable{
			Values:     values,
			Dimensions: v.Dims,
			Attributes: orderedAttributes(t, v.Attrs),
		})
		if err != nil {
			t.Fatalf("add %s: %v", v.VarName, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

func orderedAttributes(t testing.TB, attrs map[string]any) api.AttributeMap {
	t.Helper()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m, err := util.NewOrderedMap(keys, attrs)
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	return m
}
