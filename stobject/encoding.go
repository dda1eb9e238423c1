package stobject

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxBlobSize is the largest value a variable-length field can carry.
const MaxBlobSize = 918744

var (
	ErrTruncated     = errors.New("stobject: truncated data")
	ErrUnknownField  = errors.New("stobject: unknown field")
	ErrFieldOrder    = errors.New("stobject: fields out of canonical order")
	ErrInvalidHeader = errors.New("stobject: invalid field header")
	ErrInvalidLength = errors.New("stobject: invalid length prefix")
)

func appendFieldHeader(b []byte, f Field) []byte {
	t, c := uint8(f.Type), f.Code
	switch {
	case t < 16 && c < 16:
		return append(b, t<<4|c)
	case t < 16:
		return append(b, t<<4, c)
	case c < 16:
		return append(b, c, t)
	default:
		return append(b, 0, t, c)
	}
}

func appendLength(b []byte, n int) []byte {
	switch {
	case n <= 192:
		return append(b, byte(n))
	case n <= 12480:
		n -= 193
		return append(b, byte(193+(n>>8)), byte(n))
	case n <= MaxBlobSize:
		n -= 12481
		return append(b, byte(241+(n>>16)), byte(n>>8), byte(n))
	default:
		panic(fmt.Sprintf("stobject: blob of %d bytes exceeds maximum", n))
	}
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) done() bool { return r.off >= len(r.b) }

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.b) {
		return 0, ErrTruncated
	}
	v := r.b[r.off]
	r.off++
	return v, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.b)-r.off < n {
		return nil, ErrTruncated
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v, nil
}

func (r *reader) fieldHeader() (SerializedType, uint8, error) {
	b0, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	t, c := b0>>4, b0&0x0F
	if t == 0 {
		if t, err = r.readByte(); err != nil {
			return 0, 0, err
		}
		if t < 16 {
			return 0, 0, ErrInvalidHeader
		}
	}
	if c == 0 {
		if c, err = r.readByte(); err != nil {
			return 0, 0, err
		}
		if c < 16 {
			return 0, 0, ErrInvalidHeader
		}
	}
	return SerializedType(t), c, nil
}

func (r *reader) length() (int, error) {
	b0, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b0 <= 192:
		return int(b0), nil
	case b0 <= 240:
		b1, err := r.readByte()
		if err != nil {
			return 0, err
		}
		return 193 + int(b0-193)<<8 + int(b1), nil
	case b0 <= 254:
		rest, err := r.take(2)
		if err != nil {
			return 0, err
		}
		return 12481 + int(b0-241)<<16 + int(rest[0])<<8 + int(rest[1]), nil
	default:
		return 0, ErrInvalidLength
	}
}

func (r *reader) uint32() (uint32, error) {
	v, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}
