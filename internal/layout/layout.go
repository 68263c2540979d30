// Package layout describes the fixed-layout header and the fixed-stride
// timestep records shared by the flat Delwaq map (.map) and history (.his)
// output files.
//
// Both files start with a 160-byte text header, two int32 cardinalities and a
// table of 20-byte names. A history file additionally carries one
// (int32 number, 20-byte name) pair per observation point. The header is
// followed by repeated timestep blocks:
//
//	int32   seconds since T0
//	float32 value[location][parameter]   (location-major, parameter-minor)
//
// All integers and floats are little-endian.
package layout

import (
	"fmt"
	"strings"
	"time"
)

// Header geometry.
const (
	HeaderTextCount = 3  // leading 40-byte text lines that carry no fields
	HeaderTextSize  = 40 // width of every header text line
	HeaderSkip      = HeaderTextCount * HeaderTextSize

	T0Offset = 4  // start of the reference time inside the fourth header line
	T0Length = 19 // "yyyy.MM.dd HH:mm:ss"
	T0Layout = "2006.01.02 15:04:05"

	NameSize           = 20 // fixed-width substance / location name field
	LocationNumberSize = 4  // int32 preceding each history location name
	TimeStampSize      = 4  // int32 seconds-since-T0 at the start of a block
	ValueSize          = 4  // float32 payload value
)

// Block describes the stride of one timestep block. Values are stored
// location-major: every parameter of location 0, then every parameter of
// location 1, and so on.
type Block struct {
	Parameters int // substances (map) or output variables (history)
	Locations  int // segments (map) or observation points (history)
}

// Size returns the byte size of one timestep block, timestamp included.
func (b Block) Size() int64 {
	return TimeStampSize + int64(b.Parameters)*int64(b.Locations)*ValueSize
}

// LocationStride returns the distance in bytes between the same parameter of
// two consecutive locations.
func (b Block) LocationStride() int64 {
	return int64(b.Parameters) * ValueSize
}

// SlotOffset returns the offset of a value relative to the start of its
// timestep block. The leading timestamp is included.
func (b Block) SlotOffset(parameter, location int) int64 {
	return TimeStampSize + (int64(location)*int64(b.Parameters)+int64(parameter))*ValueSize
}

// Offset returns the absolute file offset of the value for (timeStep,
// parameter, location), given the offset of the first timestep block.
func (b Block) Offset(dataBlockOffset int64, timeStep, parameter, location int) int64 {
	return dataBlockOffset + int64(timeStep)*b.Size() + b.SlotOffset(parameter, location)
}

// HeaderSize returns the size of the header region that precedes the first
// timestep block.
//
// locationNames is false for map files and true for history files.
func HeaderSize(parameters, locations int, locationNames bool) int64 {
	size := int64(HeaderSkip+HeaderTextSize) + 8 + int64(parameters)*NameSize
	if locationNames {
		size += int64(locations) * (LocationNumberSize + NameSize)
	}
	return size
}

// CheckTable returns a *FormatError when a table of n entries of entrySize
// bytes cannot fit in the remaining bytes of the file.
func CheckTable(field string, n int, entrySize, remaining int64) error {
	if need := int64(n) * entrySize; need > remaining {
		return &FormatError{
			Field:  field,
			Reason: fmt.Sprintf("%d entries need %d bytes, %d left in file", n, need, remaining),
		}
	}
	return nil
}

// ParseT0 extracts the reference time from the fourth 40-byte header line.
func ParseT0(header []byte) (time.Time, error) {
	if len(header) < T0Offset+T0Length {
		return time.Time{}, &FormatError{
			Field:  "T0",
			Reason: fmt.Sprintf("header line is %d bytes, need %d", len(header), T0Offset+T0Length),
		}
	}
	raw := string(header[T0Offset : T0Offset+T0Length])
	t0, err := time.ParseInLocation(T0Layout, raw, time.UTC)
	if err != nil {
		return time.Time{}, &FormatError{Field: "T0", Reason: fmt.Sprintf("parse %q: %v", raw, err)}
	}
	return t0, nil
}

// TrimName trims the space (and NUL) padding from a fixed-width name field.
func TrimName(field []byte) string {
	return strings.Trim(string(field), " \x00")
}
