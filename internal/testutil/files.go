// Package testutil builds synthetic Delwaq output files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// SlotValue is a value that encodes its own position, so a transposed read
// returns a recognisably wrong number.
func SlotValue(step, parameter, location int) float32 {
	return float32(step*100000 + parameter*1000 + location)
}

// MapFile describes a flat map file.
type MapFile struct {
	T0         time.Time
	Substances []string
	Segments   int
	Offsets    []int32 // seconds since T0, one per timestep
	Value      func(step, substance, segment int) float32

	// Trailing appends raw bytes after the last block.
	Trailing []byte
}

// Bytes encodes the file.
func (m MapFile) Bytes() []byte {
	var buf bytes.Buffer
	writeHeader(&buf, m.T0)
	writeInt32(&buf, int32(len(m.Substances)))
	writeInt32(&buf, int32(m.Segments))
	for _, s := range m.Substances {
		writeName(&buf, s)
	}
	value := m.Value
	if value == nil {
		value = SlotValue
	}
	for step, off := range m.Offsets {
		writeInt32(&buf, off)
		for seg := 0; seg < m.Segments; seg++ {
			for sub := range m.Substances {
				writeFloat32(&buf, value(step, sub, seg))
			}
		}
	}
	buf.Write(m.Trailing)
	return buf.Bytes()
}

// HisFile describes a flat history file.
type HisFile struct {
	T0              time.Time
	OutputVariables []string
	Locations       []string
	Offsets         []int32
	Value           func(step, output, location int) float32
	Trailing        []byte
}

// Bytes encodes the file.
func (h HisFile) Bytes() []byte {
	var buf bytes.Buffer
	writeHeader(&buf, h.T0)
	writeInt32(&buf, int32(len(h.OutputVariables)))
	writeInt32(&buf, int32(len(h.Locations)))
	for _, v := range h.OutputVariables {
		writeName(&buf, v)
	}
	for i, l := range h.Locations {
		writeInt32(&buf, int32(i+1))
		writeName(&buf, l)
	}
	value := h.Value
	if value == nil {
		value = SlotValue
	}
	for step, off := range h.Offsets {
		writeInt32(&buf, off)
		for loc := range h.Locations {
			for out := range h.OutputVariables {
				writeFloat32(&buf, value(step, out, loc))
			}
		}
	}
	buf.Write(h.Trailing)
	return buf.Bytes()
}

// Write stores data under dir/name and returns the path.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func writeHeader(buf *bytes.Buffer, t0 time.Time) {
	writeText(buf, "Delwaq test output", 40)
	writeText(buf, "synthetic file", 40)
	writeText(buf, "", 40)
	writeText(buf, fmt.Sprintf("T0: %s  (scu=       1s)", t0.Format("2006.01.02 15:04:05")), 40)
}

func writeText(buf *bytes.Buffer, s string, width int) {
	b := bytes.Repeat([]byte{' '}, width)
	copy(b, s)
	buf.Write(b)
}

func writeName(buf *bytes.Buffer, s string) {
	writeText(buf, s, 20)
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	buf.Write(b[:])
}
