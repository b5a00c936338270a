package pkg

import (
	"errors"
	"fmt"
)

// ErrPayloadOverrun is returned when an opcode needs more payload bytes than
// the payload slice holds.
var ErrPayloadOverrun = errors.New("payload overrun")

// Cursor walks the payload of a frame. It is a value type: the dispatcher
// takes a cursor and hands back the advanced copy.
//
// The remaining counter is bookkeeping only and may go negative when the
// caller under-reports the payload; the slice length is the hard limit.
type Cursor struct {
	data      []byte
	pos       int
	remaining int
}

// NewCursor returns a cursor at the start of data with the given remaining
// byte count.
func NewCursor(data []byte, remaining int) Cursor {
	return Cursor{data: data, remaining: remaining}
}

// Position returns the number of bytes consumed so far.
func (c Cursor) Position() int {
	return c.pos
}

// Remaining returns the remaining-length counter.
func (c Cursor) Remaining() int {
	return c.remaining
}

// Len returns how many bytes are left in the payload slice.
func (c Cursor) Len() int {
	return len(c.data) - c.pos
}

// Peek returns the byte offset bytes ahead of the read position without
// consuming anything.
func (c Cursor) Peek(offset int) (byte, error) {
	idx := c.pos + offset
	if offset < 0 || idx >= len(c.data) {
		return 0, fmt.Errorf("peek at +%d with %d bytes left: %w", offset, c.Len(), ErrPayloadOverrun)
	}

	return c.data[idx], nil
}

// Take consumes n bytes and returns them. The returned slice aliases the
// payload.
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, fmt.Errorf("need %d bytes with %d left: %w", n, c.Len(), ErrPayloadOverrun)
	}

	chunk := c.data[c.pos : c.pos+n]
	c.pos += n
	c.remaining -= n

	return chunk, nil
}
