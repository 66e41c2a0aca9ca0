// Package wire provides the sequential byte-slice cursor the slicer and
// per-layer readers use to walk an input buffer without copying it, and a
// handful of big-endian field helpers builders use when serializing
// headers into an output buffer before handing it to a sink.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Cursor walks a borrowed byte slice left to right. Every slice it hands
// back is a sub-slice of the original buffer — Cursor never copies, so
// views it returns must not outlive buf.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor starts a cursor at the beginning of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Rest returns the unread remainder of the buffer as a sub-slice.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:] }

// Take returns the next n bytes as a sub-slice and advances past them.
// The error carries the offset at which the buffer ran out.
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("unexpected end of slice at offset %d: need %d bytes, have %d", c.pos, n, c.Remaining())
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("unexpected end of slice at offset %d: need %d bytes, have %d", c.pos, n, c.Remaining())
	}
	return c.buf[c.pos : c.pos+n], nil
}

// TakeByte reads a single byte.
func (c *Cursor) TakeByte() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// TakeUint16 reads a big-endian 16-bit field.
func (c *Cursor) TakeUint16() (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// TakeUint32 reads a big-endian 32-bit field.
func (c *Cursor) TakeUint32() (uint32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// PutUint16 writes v into buf[0:2] in big-endian order. A small helper
// used by header Write methods to fill a scratch buffer before it is
// handed to the output sink.
func PutUint16(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }

// PutUint32 writes v into buf[0:4] in big-endian order.
func PutUint32(buf []byte, v uint32) { binary.BigEndian.PutUint32(buf, v) }

// ReadUint16 reads a big-endian 16-bit field from the front of buf.
// Unlike Cursor.TakeUint16 this does not track position; it is for
// callers (like the TCP option decoder) that already sliced out an
// exact-length field and just need the bytes interpreted.
func ReadUint16(buf []byte) uint16 { return binary.BigEndian.Uint16(buf) }

// ReadUint32 reads a big-endian 32-bit field from the front of buf.
func ReadUint32(buf []byte) uint32 { return binary.BigEndian.Uint32(buf) }
