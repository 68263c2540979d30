package testutil

import (
	"time"

	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

// Dimension names used by the NetCDF fixtures.
const (
	TimeDim    = "time"
	FaceDim    = "mesh2d_nFaces"
	StationDim = "stations"
)

// NetCDFMap describes a UGRID map dataset with one time x face variable per
// substance, stored as "mesh2d_" + delwaq_name.
type NetCDFMap struct {
	Reference time.Time
	Seconds   []float64 // time coordinate, seconds since Reference
	Faces     int

	// DelwaqNames are the delwaq_name attribute values, in variable order.
	DelwaqNames []string

	// Fill sets _FillValue on every substance variable when non-nil.
	Fill *float64

	// Conventions overrides the Conventions attribute. Nil uses
	// "CF-1.8 UGRID-1.0 Deltares-0.10"; an empty string omits it.
	Conventions *string

	Value func(step, substance, face int) float64
}

// Dataset builds the in-memory dataset. Face centres are x = 10*face,
// y = 5*face.
func (n NetCDFMap) Dataset() *ncutil.MemDataset {
	value := n.Value
	if value == nil {
		value = func(step, substance, face int) float64 {
			return float64(SlotValue(step, substance, face))
		}
	}

	ds := &ncutil.MemDataset{
		Dims:  map[string]int{TimeDim: len(n.Seconds), FaceDim: n.Faces},
		Attrs: map[string]any{},
	}
	conventions := "CF-1.8 UGRID-1.0 Deltares-0.10"
	if n.Conventions != nil {
		conventions = *n.Conventions
	}
	if conventions != "" {
		ds.Attrs["Conventions"] = conventions
	}
	ds.Add(timeVariable(n.Reference, n.Seconds))
	ds.Add(&ncutil.MemVariable{
		VarName: "mesh2d",
		Attrs: map[string]any{
			"cf_role":          "mesh_topology",
			"face_dimension":   FaceDim,
			"face_coordinates": "mesh2d_face_x mesh2d_face_y",
		},
	})

	xs := make([]float64, n.Faces)
	ys := make([]float64, n.Faces)
	for f := range xs {
		xs[f], ys[f] = float64(10*f), float64(5*f)
	}
	ds.Add(&ncutil.MemVariable{VarName: "mesh2d_face_x", Dims: []string{FaceDim}, Data: xs})
	ds.Add(&ncutil.MemVariable{VarName: "mesh2d_face_y", Dims: []string{FaceDim}, Data: ys})

	for s, name := range n.DelwaqNames {
		data := make([]float64, 0, len(n.Seconds)*n.Faces)
		for step := range n.Seconds {
			for f := 0; f < n.Faces; f++ {
				data = append(data, value(step, s, f))
			}
		}
		attrs := map[string]any{"delwaq_name": name}
		if n.Fill != nil {
			attrs["_FillValue"] = []float32{float32(*n.Fill)}
		}
		ds.Add(&ncutil.MemVariable{
			VarName: "mesh2d_" + name,
			Dims:    []string{TimeDim, FaceDim},
			Attrs:   attrs,
			Data:    data,
		})
	}
	return ds
}

// NetCDFHistory describes a history dataset with one time x station
// variable per output.
type NetCDFHistory struct {
	Reference   time.Time
	Seconds     []float64
	Stations    []string
	DelwaqNames []string
	Value       func(step, output, station int) float64
}

// Dataset builds the in-memory dataset.
func (n NetCDFHistory) Dataset() *ncutil.MemDataset {
	value := n.Value
	if value == nil {
		value = func(step, output, station int) float64 {
			return float64(SlotValue(step, output, station))
		}
	}

	ds := &ncutil.MemDataset{
		Dims: map[string]int{TimeDim: len(n.Seconds), StationDim: len(n.Stations)},
	}
	ds.Add(timeVariable(n.Reference, n.Seconds))
	ds.Add(&ncutil.MemVariable{
		VarName: "station_name",
		Dims:    []string{StationDim},
		Attrs:   map[string]any{"cf_role": "timeseries_id"},
		Strings: n.Stations,
	})
	for o, name := range n.DelwaqNames {
		data := make([]float64, 0, len(n.Seconds)*len(n.Stations))
		for step := range n.Seconds {
			for s := range n.Stations {
				data = append(data, value(step, o, s))
			}
		}
		ds.Add(&ncutil.MemVariable{
			VarName: "his_" + name,
			Dims:    []string{TimeDim, StationDim},
			Attrs:   map[string]any{"delwaq_name": name},
			Data:    data,
		})
	}
	return ds
}

// Opener returns an opener that always yields ds.
func Opener(ds ncutil.Dataset) func(string) (ncutil.Dataset, error) {
	return func(string) (ncutil.Dataset, error) { return ds, nil }
}

func timeVariable(ref time.Time, seconds []float64) *ncutil.MemVariable {
	return &ncutil.MemVariable{
		VarName: "time",
		Dims:    []string{TimeDim},
		Attrs: map[string]any{
			"standard_name": "time",
			"units":         "seconds since " + ref.UTC().Format("2006-01-02 15:04:05"),
		},
		Data: seconds,
	}
}
