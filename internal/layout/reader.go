package layout

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader reads little-endian records from a seekable stream and tracks the
// current position.
type Reader struct {
	r   io.ReadSeeker
	pos int64
	buf [NameSize]byte
}

// NewReader creates a reader positioned at the current offset of r, which
// is assumed to be 0.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// SeekTo moves to an absolute offset.
func (r *Reader) SeekTo(offset int64) error {
	pos, err := r.r.Seek(offset, io.SeekStart)
	if err != nil {
		return fmt.Errorf("seek to %d: %w", offset, err)
	}
	r.pos = pos
	return nil
}

// Skip advances the position by n bytes without reading them.
func (r *Reader) Skip(n int64) error {
	if n == 0 {
		return nil
	}
	return r.SeekTo(r.pos + n)
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, r.pos, err)
	}
	r.pos += int64(n)
	return b, nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	b := r.buf[:4]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, fmt.Errorf("read int32 at %d: %w", r.pos, err)
	}
	r.pos += 4
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadFloat32 reads a little-endian IEEE 754 float32.
func (r *Reader) ReadFloat32() (float32, error) {
	b := r.buf[:4]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, fmt.Errorf("read float32 at %d: %w", r.pos, err)
	}
	r.pos += 4
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadName reads a 20-byte name field and trims its padding.
func (r *Reader) ReadName() (string, error) {
	b := r.buf[:NameSize]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", fmt.Errorf("read name at %d: %w", r.pos, err)
	}
	r.pos += NameSize
	return TrimName(b), nil
}

// ReadNames reads n consecutive name fields.
func (r *Reader) ReadNames(n int) ([]string, error) {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
