package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Cursor reads the compact static level-definition format from memory.
// Every read advances the cursor; reading past the end returns
// io.ErrUnexpectedEOF and leaves the cursor where it was.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor creates a cursor at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) take(n int) ([]byte, error) {
	if c.off+n > len(c.data) {
		return nil, fmt.Errorf("codec: need %d bytes at offset %d: %w", n, c.off, io.ErrUnexpectedEOF)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadF32 reads a little-endian float32.
func (c *Cursor) ReadF32() (float32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadString reads a NUL-terminated string.
func (c *Cursor) ReadString() (string, error) {
	end := bytes.IndexByte(c.data[c.off:], 0)
	if end < 0 {
		return "", fmt.Errorf("codec: unterminated string at offset %d: %w", c.off, io.ErrUnexpectedEOF)
	}
	s := decodeText(c.data[c.off : c.off+end])
	c.off += end + 1
	return s, nil
}

// ReadBytes reads n raw bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.off
}

// Offset returns the read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Builder assembles the format Cursor reads.
type Builder struct {
	buf bytes.Buffer
	err error
}

// WriteU8 appends one byte.
func (b *Builder) WriteU8(v uint8) {
	b.buf.WriteByte(v)
}

// WriteU16 appends a little-endian uint16.
func (b *Builder) WriteU16(v uint16) {
	b.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

// WriteI32 appends a little-endian int32.
func (b *Builder) WriteI32(v int32) {
	b.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v)))
}

// WriteF32 appends a little-endian float32.
func (b *Builder) WriteF32(v float32) {
	b.buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
}

// WriteString appends a NUL-terminated string.
func (b *Builder) WriteString(s string) {
	if err := WriteString(&b.buf, s); err != nil && b.err == nil {
		b.err = err
	}
}

// WriteBytes appends raw bytes.
func (b *Builder) WriteBytes(p []byte) {
	b.buf.Write(p)
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// Bytes returns the assembled buffer and the first error hit.
func (b *Builder) Bytes() ([]byte, error) {
	return b.buf.Bytes(), b.err
}
