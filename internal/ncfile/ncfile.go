// Package ncfile decodes Delwaq output written as NetCDF with UGRID mesh
// conventions: map files with time x face variables, history files with
// time x station variables, and the mesh face centres.
//
// Substances are found by their delwaq_name attribute and segments by the
// mesh's face dimension, so no dimension order is assumed.
package ncfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/beetlebugorg/delwaq/internal/layout"
	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

const (
	// AllIndices selects the full extent of the time or face dimension.
	AllIndices = ncutil.All

	averageSuffix = "_avg"
	meshVariable  = "mesh2d"

	// minUGRID is the oldest UGRID version whose face_dimension the reader
	// understands.
	minUGRID = "1.0"
)

// Opener opens a dataset by path.
type Opener func(path string) (ncutil.Dataset, error)

// Reader decodes NetCDF Delwaq output.
type Reader struct {
	open   Opener
	logger *slog.Logger
}

// New creates a reader. A nil open uses ncutil.Open and a nil logger uses
// slog.Default().
func New(open Opener, logger *slog.Logger) *Reader {
	if open == nil {
		open = ncutil.Open
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{open: open, logger: logger}
}

// LogicalName strips the time-average suffix from a delwaq_name value.
func LogicalName(delwaqName string) string {
	return strings.TrimSuffix(delwaqName, averageSuffix)
}

// ReadMetaData lists the substances, times and face count of a map file.
//
// A missing or zero-length file, or a file without a time variable, yields
// empty metadata and no error.
func (r *Reader) ReadMetaData(path string) (*layout.MetaData, error) {
	if !exists(path) {
		r.logger.Debug("no output data yet", "path", path)
		return &layout.MetaData{}, nil
	}

	ds, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	times, timeDim, err := ncutil.ReadTimes(ds)
	if errors.Is(err, ncutil.ErrNoTimeVariable) {
		r.logger.Warn("no time variable", "path", path)
		return &layout.MetaData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	meta := &layout.MetaData{
		SubstancesMapping: make(map[string]string),
		FillValues:        make(map[string]float64),
		Times:             times,
		NumberOfTimeSteps: len(times),
		TimeDimension:     timeDim,
	}
	if len(times) > 0 {
		meta.T0 = times[0]
	}

	for _, name := range ds.Variables() {
		v, err := ds.Variable(name)
		if err != nil {
			return nil, err
		}
		delwaqName, ok := ncutil.AttributeString(v, "delwaq_name")
		if !ok {
			continue
		}
		logical := LogicalName(delwaqName)
		meta.Substances = append(meta.Substances, logical)
		meta.SubstancesMapping[logical] = name
		if fill, ok := ncutil.AttributeFloat(v, "_FillValue"); ok {
			meta.FillValues[logical] = fill
		}
	}
	meta.NumberOfSubstances = len(meta.Substances)

	conv := ncutil.DatasetConventions(ds)
	meta.CFVersion, meta.UGRIDVersion = conv.CF, conv.UGRID
	if !conv.Supports("", minUGRID) {
		r.logger.Warn("mesh may not follow UGRID conventions",
			"path", path, "ugrid", conv.UGRID, "min_ugrid", minUGRID)
	}

	faceDim, ok := faceDimension(ds)
	if !ok {
		r.logger.Debug("no mesh face dimension", "path", path)
		return meta, nil
	}
	meta.FaceDimension = faceDim
	if n, ok := ds.DimensionLength(faceDim); ok {
		meta.NumberOfSegments = n
	}
	return meta, nil
}

// GetTimeStepData returns the values of one substance at one timestep, for
// one face or for every face when segment is AllIndices.
//
// Errors follow the flat decoder: ErrUnknownSubstance, ErrNoData for a
// missing file or time variable, and *layout.IndexError for bad indices.
func (r *Reader) GetTimeStepData(path string, meta *layout.MetaData, timeStep int, substance string, segment int) ([]float64, error) {
	return r.read(path, meta, substance, timeStep, segment, func() error {
		if err := meta.ValidateTimeStep(timeStep); err != nil {
			return err
		}
		return meta.ValidateSegment(segment, true)
	})
}

// GetTimeSeriesData returns the value of one substance at one face for
// every timestep.
func (r *Reader) GetTimeSeriesData(path string, meta *layout.MetaData, substance string, segment int) ([]float64, error) {
	return r.read(path, meta, substance, AllIndices, segment, func() error {
		return meta.ValidateSegment(segment, false)
	})
}

func (r *Reader) read(path string, meta *layout.MetaData, substance string, timeStep, segment int, validate func() error) ([]float64, error) {
	var varName string
	ok := false
	if meta != nil {
		varName, ok = meta.SubstancesMapping[substance]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", layout.ErrUnknownSubstance, substance)
	}
	if !exists(path) {
		r.logger.Debug("no output data yet", "path", path)
		return nil, layout.ErrNoData
	}
	if err := validate(); err != nil {
		return nil, err
	}

	ds, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	timeVar, ok := ncutil.FindByStandardName(ds, "time")
	if !ok || len(timeVar.Dimensions()) == 0 {
		r.logger.Warn("no time variable", "path", path)
		return nil, layout.ErrNoData
	}

	v, err := ds.Variable(varName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lengths, err := ncutil.Lengths(ds, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sel := map[string]int{timeVar.Dimensions()[0]: timeStep}
	if meta.FaceDimension != "" {
		sel[meta.FaceDimension] = segment
	}
	origin, shape := ncutil.Hyperslab(v.Dimensions(), lengths, sel)
	return v.Read(origin, shape)
}

// faceDimension reads face_dimension from the mesh topology variable.
func faceDimension(ds ncutil.Dataset) (string, bool) {
	mesh, ok := meshTopology(ds)
	if !ok {
		return "", false
	}
	return ncutil.AttributeString(mesh, "face_dimension")
}

func meshTopology(ds ncutil.Dataset) (ncutil.Variable, bool) {
	if v, err := ds.Variable(meshVariable); err == nil {
		return v, true
	}
	return ncutil.FindByAttribute(ds, "cf_role", "mesh_topology")
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
