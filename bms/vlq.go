package bms

import "errors"

// ErrTruncatedVLQ is returned when a quantity runs past the end of the input.
var ErrTruncatedVLQ = errors.New("truncated variable-length quantity")

// AppendVLQ appends v as a big-endian base-128 quantity. Every digit but
// the last has its high bit set; 0 encodes as a single zero byte.
func AppendVLQ(dst []byte, v uint32) []byte {
	var digits [5]byte
	i := len(digits) - 1
	digits[i] = byte(v & 0x7F)
	v >>= 7
	for v > 0 {
		i--
		digits[i] = byte(v&0x7F) | 0x80
		v >>= 7
	}
	return append(dst, digits[i:]...)
}

// DecodeVLQ reads a quantity from b and returns it with the number of
// bytes consumed.
func DecodeVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b) && i < 5; i++ {
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncatedVLQ
}
