package delwaq

import (
	"path/filepath"
	"testing"

	"github.com/beetlebugorg/delwaq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceIndex(t *testing.T) {
	// 5 x 5 grid of unit cells
	var xs, ys []float64
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			xs = append(xs, float64(i)+0.5)
			ys = append(ys, float64(j)+0.5)
		}
	}
	idx, err := NewFaceIndex(xs, ys)
	require.NoError(t, err)
	assert.Equal(t, 25, idx.Len())
	assert.Equal(t, Bounds{MinX: 0.5, MaxX: 4.5, MinY: 0.5, MaxY: 4.5}, idx.Bounds())

	got := idx.SegmentsInBounds(Bounds{MinX: 0, MaxX: 2, MinY: 0, MaxY: 1})
	assert.Equal(t, []int{0, 1}, got)

	// touching edges are included
	got = idx.SegmentsInBounds(Bounds{MinX: 0.5, MaxX: 0.5, MinY: 0.5, MaxY: 1.5})
	assert.Equal(t, []int{0, 5}, got)

	// outside the mesh extent
	outside := idx.SegmentsInBounds(Bounds{MinX: 10, MaxX: 11, MinY: 10, MaxY: 11})
	assert.NotNil(t, outside)
	assert.Empty(t, outside)
	// touching the extent corner
	assert.Equal(t, []int{24}, idx.SegmentsInBounds(Bounds{MinX: 4.5, MaxX: 6, MinY: 4.5, MaxY: 6}))

	seg, ok := idx.NearestSegment(3.4, 2.6)
	require.True(t, ok)
	assert.Equal(t, 13, seg)

	_, err = NewFaceIndex([]float64{1}, nil)
	assert.Error(t, err)

	empty, err := NewFaceIndex(nil, nil)
	require.NoError(t, err)
	_, ok = empty.NearestSegment(0, 0)
	assert.False(t, ok)
	assert.Empty(t, empty.SegmentsInBounds(Bounds{MaxX: 1, MaxY: 1}))
}

func TestLoadFaceIndex(t *testing.T) {
	ds := testutil.NetCDFMap{Reference: t0, Seconds: []float64{0}, Faces: 3}.Dataset()
	path := testutil.Write(t, t.TempDir(), "grid_map.nc", []byte("CDF"))

	idx, err := LoadFaceIndex(path, ReadOptions{OpenDataset: testutil.Opener(ds)})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	seg, ok := idx.NearestSegment(19, 9)
	require.True(t, ok)
	assert.Equal(t, 2, seg)

	_, err = LoadFaceIndex(filepath.Join(t.TempDir(), "none_map.nc"), DefaultReadOptions())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBounds(t *testing.T) {
	b := Bounds{MinX: 0, MaxX: 10, MinY: 0, MaxY: 5}
	assert.True(t, b.Contains(10, 5))
	assert.False(t, b.Contains(10.1, 5))
	assert.True(t, b.Intersects(Bounds{MinX: 9, MaxX: 12, MinY: 4, MaxY: 8}))
	assert.False(t, b.Intersects(Bounds{MinX: 11, MaxX: 12, MinY: 0, MaxY: 1}))
	assert.Equal(t, Bounds{MinX: -1, MaxX: 11, MinY: -1, MaxY: 6}, b.Expand(1))
}
