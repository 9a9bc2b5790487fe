// Package buf contains bounds-checked decoding helpers shared by the format
// parsers. Every read validates its range before touching the bytes, so a
// malformed archive surfaces as ErrOutOfBounds instead of a panic.
package buf

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Cursor reads fixed-width integers and strings at caller-supplied offsets.
// It holds no position of its own; all state lives in the offset the caller
// passes, which keeps it safe to share between goroutines.
type Cursor struct {
	b     []byte
	order binary.ByteOrder
}

// NewCursor returns a little-endian cursor over b.
func NewCursor(b []byte) Cursor {
	return Cursor{b: b, order: binary.LittleEndian}
}

// WithOrder returns a copy of c that decodes integers using order.
func (c Cursor) WithOrder(order binary.ByteOrder) Cursor {
	c.order = order
	return c
}

// Len returns the length of the underlying buffer.
func (c Cursor) Len() int { return len(c.b) }

// Bytes returns b[off:off+n] without copying.
func (c Cursor) Bytes(off, n int) ([]byte, error) {
	s, ok := Slice(c.b, off, n)
	if !ok {
		return nil, fmt.Errorf("%d bytes at offset %d (len %d): %w", n, off, len(c.b), ErrOutOfBounds)
	}
	return s, nil
}

// U8 reads a single byte.
func (c Cursor) U8(off int) (uint8, error) {
	s, err := c.Bytes(off, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// U16 reads a uint16 in the cursor's byte order.
func (c Cursor) U16(off int) (uint16, error) {
	s, err := c.Bytes(off, 2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(s), nil
}

// U32 reads a uint32 in the cursor's byte order.
func (c Cursor) U32(off int) (uint32, error) {
	s, err := c.Bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(s), nil
}

// U64 reads a uint64 in the cursor's byte order.
func (c Cursor) U64(off int) (uint64, error) {
	s, err := c.Bytes(off, 8)
	if err != nil {
		return 0, err
	}
	return c.order.Uint64(s), nil
}

// BString reads a string prefixed by a one-byte length with no terminator.
// It returns the raw bytes and the total encoded size.
func (c Cursor) BString(off int) ([]byte, int, error) {
	n, err := c.U8(off)
	if err != nil {
		return nil, 0, err
	}
	s, err := c.Bytes(off+1, int(n))
	if err != nil {
		return nil, 0, err
	}
	return s, 1 + int(n), nil
}

// BZString reads a string prefixed by a one-byte length that counts a
// trailing NUL. The NUL is stripped from the returned bytes.
func (c Cursor) BZString(off int) ([]byte, int, error) {
	s, size, err := c.BString(off)
	if err != nil {
		return nil, 0, err
	}
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s, size, nil
}

// CString reads a NUL-terminated string starting at off and returns the
// bytes without the terminator plus the encoded size including it. A missing
// terminator is an out-of-bounds read.
func (c Cursor) CString(off int) ([]byte, int, error) {
	if off < 0 || off > len(c.b) {
		return nil, 0, fmt.Errorf("string at offset %d (len %d): %w", off, len(c.b), ErrOutOfBounds)
	}
	i := bytes.IndexByte(c.b[off:], 0)
	if i < 0 {
		return nil, 0, fmt.Errorf("unterminated string at offset %d: %w", off, ErrOutOfBounds)
	}
	return c.b[off : off+i], i + 1, nil
}
