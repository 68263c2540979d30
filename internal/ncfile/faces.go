package ncfile

import (
	"fmt"
	"strings"

	"github.com/beetlebugorg/delwaq/internal/layout"
	"github.com/beetlebugorg/delwaq/internal/ncutil"
)

// Faces holds the centre coordinates of every mesh face. The index of a
// face is its segment index.
type Faces struct {
	X []float64
	Y []float64
}

// Len returns the number of faces.
func (f *Faces) Len() int {
	return len(f.X)
}

// ReadFaceCenters reads the face centres named by the mesh's
// face_coordinates attribute, falling back to mesh2d_face_x and
// mesh2d_face_y. A missing or empty file returns ErrNoData.
func (r *Reader) ReadFaceCenters(path string) (*Faces, error) {
	if !exists(path) {
		r.logger.Debug("no output data yet", "path", path)
		return nil, layout.ErrNoData
	}

	ds, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	xName, yName := meshVariable+"_face_x", meshVariable+"_face_y"
	if mesh, ok := meshTopology(ds); ok {
		if coords, ok := ncutil.AttributeString(mesh, "face_coordinates"); ok {
			if f := strings.Fields(coords); len(f) == 2 {
				xName, yName = f[0], f[1]
			}
		}
	}

	xs, err := readCoordinate(ds, xName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ys, err := readCoordinate(ds, yName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%s: %d face x coordinates, %d face y coordinates", path, len(xs), len(ys))
	}
	return &Faces{X: xs, Y: ys}, nil
}

func readCoordinate(ds ncutil.Dataset, name string) ([]float64, error) {
	v, err := ds.Variable(name)
	if err != nil {
		return nil, err
	}
	return ncutil.ReadAll(ds, v)
}
