package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSize(t *testing.T) {
	b := Block{Parameters: 2, Locations: 3}
	assert.Equal(t, int64(4+2*3*4), b.Size())
	assert.Equal(t, int64(8), b.LocationStride())
}

func TestSlotOffsetIsLocationMajor(t *testing.T) {
	b := Block{Parameters: 2, Locations: 3}

	// Consecutive parameters of one location are adjacent.
	assert.Equal(t, int64(4), b.SlotOffset(0, 0))
	assert.Equal(t, int64(8), b.SlotOffset(1, 0))
	// The next location starts after all parameters of the previous one.
	assert.Equal(t, int64(12), b.SlotOffset(0, 1))
	assert.Equal(t, b.SlotOffset(0, 1)-b.SlotOffset(0, 0), b.LocationStride())
	// Last slot ends exactly at the end of the block.
	assert.Equal(t, b.Size(), b.SlotOffset(1, 2)+ValueSize)
}

func TestOffset(t *testing.T) {
	b := Block{Parameters: 2, Locations: 3}
	const dataOffset = 208

	got := b.Offset(dataOffset, 1, 1, 2)
	want := int64(dataOffset + 1*(4+2*3*4) + 4 + 1*4 + 2*(2*4))
	assert.Equal(t, want, got)
}

func TestHeaderSize(t *testing.T) {
	// 3x40 text, 40-byte T0 line, two counts, six 20-byte names.
	assert.Equal(t, int64(288), HeaderSize(6, 2, false))
	assert.Equal(t, int64(288+2*24), HeaderSize(6, 2, true))
}

func TestCheckTable(t *testing.T) {
	assert.NoError(t, CheckTable("names", 2, NameSize, 40))
	assert.NoError(t, CheckTable("names", 0, NameSize, 0))

	err := CheckTable("names", 0x7fffffff, NameSize, 40)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "names", fe.Field)
}

func TestParseT0(t *testing.T) {
	line := []byte("T0: 2020.01.01 00:00:00  (scu=       1s)")
	t0, err := ParseT0(line)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), t0)
}

func TestParseT0Invalid(t *testing.T) {
	_, err := ParseT0([]byte("T0: not a date at all, really not!!!!!!"))
	require.Error(t, err)
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "T0", fe.Field)

	_, err = ParseT0([]byte("T0: 2020"))
	assert.Error(t, err)
}

func TestTrimName(t *testing.T) {
	assert.Equal(t, "OXY", TrimName([]byte("OXY                 ")))
	assert.Equal(t, "Salinity", TrimName([]byte("Salinity\x00\x00\x00")))
	assert.Equal(t, "", TrimName([]byte("                    ")))
}

func TestReader(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, int32(-7))
	_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(2.5))
	name := make([]byte, NameSize)
	copy(name, "TEMP                ")
	buf.Write(name)
	_ = binary.Write(&buf, binary.LittleEndian, int32(42))

	r := NewReader(bytes.NewReader(buf.Bytes()))

	i, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)

	f, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f)

	n, err := r.ReadName()
	require.NoError(t, err)
	assert.Equal(t, "TEMP", n)
	assert.Equal(t, int64(28), r.Pos())

	require.NoError(t, r.SeekTo(4))
	require.NoError(t, r.Skip(24))
	i, err = r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(42), i)

	_, err = r.ReadInt32()
	assert.Error(t, err)
}

func TestMetaDataLookups(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &MetaData{
		Substances:         []string{"OXY", "TEMP"},
		Locations:          []string{"Station A"},
		Times:              []time.Time{t0, t0.Add(time.Hour)},
		NumberOfSubstances: 2,
		NumberOfSegments:   3,
		NumberOfTimeSteps:  2,
	}

	assert.Equal(t, 1, m.SubstanceIndex("TEMP"))
	assert.Equal(t, -1, m.SubstanceIndex("SAL"))
	assert.Equal(t, 1, m.TimeIndex(t0.Add(time.Hour)))
	assert.Equal(t, -1, m.TimeIndex(t0.Add(time.Minute)))
	assert.Equal(t, 0, m.LocationIndex("Station A"))
	assert.False(t, m.Empty())
	assert.True(t, (&MetaData{}).Empty())

	var nilMeta *MetaData
	assert.True(t, nilMeta.Empty())
	assert.Equal(t, -1, nilMeta.SubstanceIndex("OXY"))
}

func TestValidateIndexes(t *testing.T) {
	m := &MetaData{NumberOfSegments: 3, NumberOfTimeSteps: 2}

	assert.NoError(t, m.ValidateTimeStep(1))
	assert.NoError(t, m.ValidateSegment(-1, true))
	assert.NoError(t, m.ValidateSegment(2, false))

	err := m.ValidateTimeStep(2)
	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, IndexTimeStep, ie.Kind)
	assert.Equal(t, "timestep index 2 out of range [0, 2)", err.Error())

	assert.Error(t, m.ValidateSegment(-1, false))
	assert.Error(t, m.ValidateSegment(3, true))
}

// The metadata reader truncates a trailing partial block on purpose; the
// leftover is observable through TrailingBytes.
func TestTrailingBytes(t *testing.T) {
	m := &MetaData{
		NumberOfSubstances:     2,
		NumberOfSegments:       3,
		NumberOfTimeSteps:      2,
		DataBlockOffsetInBytes: 208,
	}
	whole := int64(208 + 2*28)
	assert.Equal(t, int64(0), TrailingBytes(m, whole))
	assert.Equal(t, int64(10), TrailingBytes(m, whole+10))
	assert.Equal(t, int64(0), TrailingBytes(&MetaData{}, 100))
}
