package delwaq

import (
	"fmt"
	"sort"

	"github.com/beetlebugorg/delwaq/internal/ncfile"
	"github.com/dhconnelly/rtreego"
)

// Bounds is an axis-aligned rectangle in the mesh coordinate system.
type Bounds struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// Contains returns true if the point (x, y) is within the bounds.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MaxX: b.MaxX + margin,
		MinY: b.MinY - margin,
		MaxY: b.MaxY + margin,
	}
}

// rect converts the bounds to an R-tree rectangle. The R-tree requires
// non-zero lengths, so degenerate sides are padded.
func (b Bounds) rect() rtreego.Rect {
	const epsilon = 1e-6
	dx := b.MaxX - b.MinX
	dy := b.MaxY - b.MinY
	if dx < epsilon {
		dx = epsilon
	}
	if dy < epsilon {
		dy = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{dx, dy})
	return rect
}

// FaceIndex answers spatial queries over the face centres of a UGRID mesh.
// Face i is segment i.
type FaceIndex struct {
	faces  []indexedFace
	rtree  *rtreego.Rtree
	bounds Bounds
}

// indexedFace wraps a face centre for R-tree storage.
type indexedFace struct {
	segment int
	x, y    float64
}

// Bounds implements rtreego.Spatial.
func (f *indexedFace) Bounds() rtreego.Rect {
	return Bounds{MinX: f.x, MaxX: f.x, MinY: f.y, MaxY: f.y}.rect()
}

// NewFaceIndex indexes face centres given as parallel coordinate slices.
func NewFaceIndex(xs, ys []float64) (*FaceIndex, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("face index: %d x coordinates, %d y coordinates", len(xs), len(ys))
	}

	// 2D, min=25 children, max=50 children
	idx := &FaceIndex{
		faces: make([]indexedFace, len(xs)),
		rtree: rtreego.NewTree(2, 25, 50),
	}
	for i := range xs {
		idx.faces[i] = indexedFace{segment: i, x: xs[i], y: ys[i]}
		idx.rtree.Insert(&idx.faces[i])

		if i == 0 {
			idx.bounds = Bounds{MinX: xs[i], MaxX: xs[i], MinY: ys[i], MaxY: ys[i]}
			continue
		}
		idx.bounds.MinX = min(idx.bounds.MinX, xs[i])
		idx.bounds.MaxX = max(idx.bounds.MaxX, xs[i])
		idx.bounds.MinY = min(idx.bounds.MinY, ys[i])
		idx.bounds.MaxY = max(idx.bounds.MaxY, ys[i])
	}
	return idx, nil
}

// LoadFaceIndex reads the face centres of a NetCDF map file and indexes
// them.
func LoadFaceIndex(path string, opts ReadOptions) (*FaceIndex, error) {
	faces, err := ncfile.New(opts.OpenDataset, opts.logger()).ReadFaceCenters(path)
	if err != nil {
		return nil, err
	}
	return NewFaceIndex(faces.X, faces.Y)
}

// Len returns the number of indexed faces.
func (idx *FaceIndex) Len() int {
	return len(idx.faces)
}

// Bounds returns the extent of all face centres.
func (idx *FaceIndex) Bounds() Bounds {
	return idx.bounds
}

// SegmentsInBounds returns the segments whose face centre lies within b,
// in ascending order.
func (idx *FaceIndex) SegmentsInBounds(b Bounds) []int {
	if len(idx.faces) == 0 || !idx.bounds.Intersects(b) {
		return []int{}
	}

	// R-tree intersection excludes touching edges; widen the query and
	// filter exactly.
	spatials := idx.rtree.SearchIntersect(b.Expand(1e-5).rect())

	result := make([]int, 0, len(spatials))
	for _, spatial := range spatials {
		face := spatial.(*indexedFace)
		if b.Contains(face.x, face.y) {
			result = append(result, face.segment)
		}
	}
	sort.Ints(result)
	return result
}

// NearestSegment returns the segment whose face centre is closest to
// (x, y). It returns false for an empty index.
func (idx *FaceIndex) NearestSegment(x, y float64) (int, bool) {
	if len(idx.faces) == 0 {
		return 0, false
	}
	nearest := idx.rtree.NearestNeighbor(rtreego.Point{x, y})
	if nearest == nil {
		return 0, false
	}
	return nearest.(*indexedFace).segment, true
}
