package ncutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Open opens a NetCDF (classic CDF or NetCDF-4/HDF5) file.
func Open(path string) (Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &dataset{group: g}, nil
}

type dataset struct {
	group api.Group

	once sync.Once
	dims map[string]int
}

func (d *dataset) Variables() []string {
	return d.group.ListVariables()
}

func (d *dataset) Variable(name string) (Variable, error) {
	vg, err := d.group.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, ErrNotFound)
	}
	return &variable{ds: d, name: name, vg: vg}, nil
}

func (d *dataset) Attribute(name string) (any, bool) {
	attrs := d.group.Attributes()
	if attrs == nil {
		return nil, false
	}
	return attrs.Get(name)
}

// DimensionLength prefers the length seen in a variable's shape, since the
// CDF backend reports an unlimited dimension as 0.
func (d *dataset) DimensionLength(name string) (int, bool) {
	d.once.Do(d.scanDimensions)
	if n, ok := d.dims[name]; ok {
		return n, true
	}
	if n, ok := d.group.GetDimension(name); ok {
		return int(n), true
	}
	return 0, false
}

func (d *dataset) scanDimensions() {
	d.dims = make(map[string]int)
	for _, name := range d.group.ListVariables() {
		vg, err := d.group.GetVarGetter(name)
		if err != nil {
			continue
		}
		shape := vg.Shape()
		for i, dim := range vg.Dimensions() {
			if _, seen := d.dims[dim]; !seen && i < len(shape) {
				d.dims[dim] = int(shape[i])
			}
		}
	}
}

func (d *dataset) Close() {
	d.group.Close()
}

type variable struct {
	ds   *dataset
	name string
	vg   api.VarGetter
}

func (v *variable) Name() string         { return v.name }
func (v *variable) Dimensions() []string { return v.vg.Dimensions() }

func (v *variable) Attribute(name string) (any, bool) {
	attrs := v.vg.Attributes()
	if attrs == nil {
		return nil, false
	}
	return attrs.Get(name)
}

// Read fetches the hyperslab with one GetSliceMD call.
func (v *variable) Read(origin, shape []int) ([]float64, error) {
	dims := v.vg.Dimensions()
	if len(origin) != len(dims) || len(shape) != len(dims) {
		return nil, fmt.Errorf("read %s: %d dimensions, origin has %d, shape has %d",
			v.name, len(dims), len(origin), len(shape))
	}

	if len(dims) == 0 {
		raw, err := v.vg.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", v.name, err)
		}
		return Flatten(raw)
	}

	lengths := v.vg.Shape()
	begin := make([]int64, len(dims))
	end := make([]int64, len(dims))
	for i := range dims {
		if origin[i] < 0 || shape[i] < 0 || int64(origin[i]+shape[i]) > lengths[i] {
			return nil, fmt.Errorf("read %s: %s range [%d, %d) outside [0, %d)",
				v.name, dims[i], origin[i], origin[i]+shape[i], lengths[i])
		}
		if shape[i] == 0 {
			return []float64{}, nil
		}
		begin[i] = int64(origin[i])
		end[i] = int64(origin[i] + shape[i])
	}

	raw, err := v.vg.GetSliceMD(begin, end)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", v.name, err)
	}
	flat, err := Flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", v.name, err)
	}
	return flat, nil
}

func (v *variable) ReadStrings() ([]string, error) {
	raw, err := v.vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", v.name, err)
	}
	switch x := raw.(type) {
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = strings.TrimRight(s, " \x00")
		}
		return out, nil
	case string:
		return []string{strings.TrimRight(x, " \x00")}, nil
	case [][]byte:
		out := make([]string, len(x))
		for i, b := range x {
			out[i] = strings.TrimRight(string(b), " \x00")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("read %s: %T is not a character array", v.name, raw)
	}
}
