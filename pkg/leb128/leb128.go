package leb128

import (
	"github.com/suimeet/eventgraph/common/errs"
)

const (
	ErrEmpty        = errs.ErrorKind("leb128: empty byte sequence")
	ErrUnterminated = errs.ErrorKind("leb128: unterminated byte sequence")
	ErrOverflow     = errs.ErrorKind("leb128: overflow uint64")
)

// EncodeUint64 encodes n as an unsigned LEB128 byte sequence.
func EncodeUint64(n uint64) []byte {
	bytes := make([]byte, 0)
	for n>>7 > 0 {
		last7Bits := byte(n & 0b0111_1111)
		bytes = append(bytes, last7Bits|0b1000_0000)
		n >>= 7
	}
	bytes = append(bytes, byte(n))
	return bytes
}

// DecodeUint64 decodes an unsigned LEB128 byte sequence, returning the value
// and the number of bytes consumed.
func DecodeUint64(data []byte) (n uint64, length int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrEmpty
	}

	for i, b := range data {
		if i > 9 || (i == 9 && b > 1) {
			return 0, 0, ErrOverflow
		}
		n |= uint64(b&0b0111_1111) << (7 * i)
		// if the high bit is not set, then this is the last byte
		if b&0b1000_0000 == 0 {
			return n, i + 1, nil
		}
	}
	return 0, 0, ErrUnterminated
}
