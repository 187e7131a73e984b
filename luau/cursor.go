package luau

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Binary cursor
// ---------------------------------------------------------------------------

// cursor walks a bytecode buffer. Every read is bounds checked; running off
// the end yields ErrCorruptBytecode rather than a panic.
type cursor struct {
	data   []byte
	offset int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.offset
}

// atEnd reports whether the cursor consumed the whole buffer.
func (c *cursor) atEnd() bool {
	return c.offset == len(c.data)
}

func (c *cursor) readByte() (byte, error) {
	if c.offset >= len(c.data) {
		return 0, fmt.Errorf("%w: unexpected end of input at offset %d", ErrCorruptBytecode, c.offset)
	}
	b := c.data[c.offset]
	c.offset++
	return b, nil
}

func (c *cursor) readBool() (bool, error) {
	b, err := c.readByte()
	return b != 0, err
}

func (c *cursor) readWord() (uint32, error) {
	if c.remaining() < 4 {
		return 0, fmt.Errorf("%w: unexpected end of input at offset %d", ErrCorruptBytecode, c.offset)
	}
	v := binary.LittleEndian.Uint32(c.data[c.offset:])
	c.offset += 4
	return v, nil
}

func (c *cursor) readFloat32() (float32, error) {
	v, err := c.readWord()
	return math.Float32frombits(v), err
}

func (c *cursor) readFloat64() (float64, error) {
	if c.remaining() < 8 {
		return 0, fmt.Errorf("%w: unexpected end of input at offset %d", ErrCorruptBytecode, c.offset)
	}
	v := binary.LittleEndian.Uint64(c.data[c.offset:])
	c.offset += 8
	return math.Float64frombits(v), nil
}

// readVarInt reads an LEB128-style variable-length unsigned integer: seven
// payload bits per byte, high bit set on all but the last byte.
func (c *cursor) readVarInt() (uint32, error) {
	var result uint32
	for shift := 0; shift < 32; shift += 7 {
		b, err := c.readByte()
		if err != nil {
			return 0, fmt.Errorf("failed to read varint: %w", err)
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, fmt.Errorf("%w: varint too long at offset %d", ErrCorruptBytecode, c.offset)
}

// readString reads a varint-length-prefixed string.
func (c *cursor) readString() (string, error) {
	n, err := c.readVarInt()
	if err != nil {
		return "", err
	}
	if int(n) > c.remaining() {
		return "", fmt.Errorf("%w: string length %d exceeds remaining %d bytes", ErrCorruptBytecode, n, c.remaining())
	}
	s := string(c.data[c.offset : c.offset+int(n)])
	c.offset += int(n)
	return s, nil
}

// skip advances past n bytes.
func (c *cursor) skip(n int) error {
	if n < 0 || n > c.remaining() {
		return fmt.Errorf("%w: cannot skip %d bytes at offset %d", ErrCorruptBytecode, n, c.offset)
	}
	c.offset += n
	return nil
}
