package javaser

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/pkg/errors"
)

// byteCursor is a positional, monotonic reader over an immutable byte
// buffer. It never backtracks and never buffers beyond the slice it was
// built from.
type byteCursor struct {
	buf []byte
	pos int
}

func newByteCursor(buf []byte) *byteCursor {
	return &byteCursor{buf: buf}
}

var errPrematureEndOfInput = errors.New("premature end of input")

// advance moves the position forward by n bytes and returns the prior
// position. It fails when the new position would exceed the buffer.
func (c *byteCursor) advance(n int) (int, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return c.pos, errPrematureEndOfInput
	}
	prior := c.pos
	c.pos += n
	return prior, nil
}

func (c *byteCursor) atEnd() bool {
	return c.pos >= len(c.buf)
}

func (c *byteCursor) slice(n int) ([]byte, error) {
	start, err := c.advance(n)
	if err != nil {
		return nil, err
	}
	return c.buf[start:c.pos], nil
}

func (c *byteCursor) u8() (uint8, error) {
	b, err := c.slice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *byteCursor) i8() (int8, error) {
	b, err := c.u8()
	return int8(b), err
}

func (c *byteCursor) u16be() (uint16, error) {
	b, err := c.slice(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *byteCursor) i16be() (int16, error) {
	x, err := c.u16be()
	return int16(x), err
}

func (c *byteCursor) u32be() (uint32, error) {
	b, err := c.slice(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *byteCursor) i32be() (int32, error) {
	x, err := c.u32be()
	return int32(x), err
}

func (c *byteCursor) f32be() (float32, error) {
	x, err := c.u32be()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(x), nil
}

func (c *byteCursor) f64be() (float64, error) {
	b, err := c.slice(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// hex returns the next n bytes as lowercase hex, zero-padded on the left
// is not needed here since it always reflects exactly n bytes read.
func (c *byteCursor) hex(n int) (string, error) {
	b, err := c.slice(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// utfShort reads a u16 length prefix followed by that many UTF-8 bytes.
func (c *byteCursor) utfShort() (string, error) {
	n, err := c.u16be()
	if err != nil {
		return "", errors.Wrap(err, "error reading utf: unable to read segment length")
	}
	b, err := c.slice(int(n))
	if err != nil {
		return "", errors.Wrap(err, "error reading utf: unable to read segment")
	}
	return string(b), nil
}

var errLongStringOverflow = errors.New("unable to read string larger than 2^32 bytes")

// utfLong reads a u32 high-half (which must be zero) then a u32 low-half
// length, followed by that many UTF-8 bytes.
func (c *byteCursor) utfLong() (string, error) {
	hi, err := c.u32be()
	if err != nil {
		return "", errors.Wrap(err, "error reading utf long: unable to read first segment length")
	}
	if hi != 0 {
		return "", errLongStringOverflow
	}
	lo, err := c.u32be()
	if err != nil {
		return "", errors.Wrap(err, "error reading utf long: unable to read second segment length")
	}
	b, err := c.slice(int(lo))
	if err != nil {
		return "", errors.Wrap(err, "error reading utf long: unable to read segment")
	}
	return string(b), nil
}
