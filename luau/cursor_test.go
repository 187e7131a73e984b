package luau

import (
	"errors"
	"testing"
)

func TestCursorVarInt(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint32
	}{
		{"single byte", []byte{0x05}, 5},
		{"boundary", []byte{0x7F}, 127},
		{"two bytes", []byte{0xAC, 0x02}, 300},
		{"max", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCursor(tc.data)
			got, err := c.readVarInt()
			if err != nil {
				t.Fatalf("readVarInt: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
			if !c.atEnd() {
				t.Errorf("cursor left %d bytes unread", c.remaining())
			}
		})
	}
}

func TestCursorVarIntTruncated(t *testing.T) {
	c := newCursor([]byte{0x80, 0x80})
	if _, err := c.readVarInt(); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("truncated varint: got %v, want ErrCorruptBytecode", err)
	}
}

func TestCursorStringBounds(t *testing.T) {
	// Length prefix claims 10 bytes, only 3 present.
	c := newCursor([]byte{0x0A, 'a', 'b', 'c'})
	if _, err := c.readString(); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("oversized string: got %v, want ErrCorruptBytecode", err)
	}
}

func TestCursorReadPastEnd(t *testing.T) {
	c := newCursor([]byte{0x01})
	if _, err := c.readByte(); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := c.readByte(); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("read past end: got %v, want ErrCorruptBytecode", err)
	}
	if _, err := c.readWord(); !errors.Is(err, ErrCorruptBytecode) {
		t.Errorf("word past end: got %v, want ErrCorruptBytecode", err)
	}
}
