package bits

import (
	"strings"
)

// Bits is a sequence of single bits (each element is 0 or 1), MSB first.
type Bits []uint8

// String renders the sequence as a run of '0' and '1' characters
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// FromHex expands a hex string into bits, four per digit, MSB first.
// An optional "0x" or "0X" prefix is stripped.
func FromHex(hex string) (Bits, error) {
	if len(hex) >= 2 && hex[0] == '0' && (hex[1] == 'x' || hex[1] == 'X') {
		hex = hex[2:]
	}

	out := make(Bits, 0, len(hex)*4)
	for i := 0; i < len(hex); i++ {
		v, ok := hexValue(hex[i])
		if !ok {
			return nil, newError(ErrKindInvalidHex, "invalid hex digit %q at position %d", hex[i], i)
		}
		for shift := 3; shift >= 0; shift-- {
			out = append(out, (v>>shift)&1)
		}
	}

	return out, nil
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Extract returns a copy of bits [start, start+length).
// It fails when start is negative, start is past the end, or the range
// runs past the end of the sequence.
func Extract(b Bits, start, length int) (Bits, error) {
	if start < 0 || start >= len(b) {
		return nil, newError(ErrKindOutOfRange, "invalid start bit: %d", start)
	}
	if length < 0 || start+length > len(b) {
		return nil, newError(ErrKindOutOfRange, "bit range exceeds payload size: %d + %d > %d", start, length, len(b))
	}

	out := make(Bits, length)
	copy(out, b[start:start+length])
	return out, nil
}

// ReverseBytes reverses the order of the 8-bit groups in b.
// The bit order inside each byte is kept.
func ReverseBytes(b Bits) (Bits, error) {
	if len(b)%8 != 0 {
		return nil, newError(ErrKindNotByteAligned, "bit length %d is not a multiple of 8", len(b))
	}

	n := len(b) / 8
	out := make(Bits, 0, len(b))
	for i := n - 1; i >= 0; i-- {
		out = append(out, b[i*8:i*8+8]...)
	}
	return out, nil
}

// Normalize applies byte-order correction to an extracted field.
//
// Only little-endian fields whose width is a whole number of bytes are
// reversed. Any other field, including a little-endian field that is not
// byte aligned, is returned exactly as extracted.
func Normalize(b Bits, littleEndian bool) Bits {
	if !littleEndian || len(b)%8 != 0 {
		return b
	}
	// Cannot fail: length checked above.
	out, _ := ReverseBytes(b)
	return out
}

// Bytes packs the sequence into bytes, MSB first
func Bytes(b Bits) ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, newError(ErrKindNotByteAligned, "bit length %d is not a multiple of 8", len(b))
	}

	out := make([]byte, len(b)/8)
	for i, bit := range b {
		out[i/8] = out[i/8]<<1 | bit
	}
	return out, nil
}
