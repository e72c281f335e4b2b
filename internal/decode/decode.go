package decode

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/muurk/canplot/internal/bits"
)

// Decode interprets b as a value of type d.
// b must be exactly d.Bits() long and already byte-order normalized.
func Decode(b bits.Bits, d DataType) (float64, error) {
	info, ok := d.Info()
	if !ok {
		return 0, newError(ErrKindUnsupportedType, "unsupported data type: %q", string(d))
	}
	if len(b) != info.Bits {
		return 0, newError(ErrKindWidthMismatch, "expected %d bits for %s, got %d bits", info.Bits, d, len(b))
	}

	switch d {
	case Float16:
		return Float16Value(uint16(Unsigned(b))), nil
	case Float32:
		return Float32Value(b)
	}

	if info.Signed {
		return float64(Signed(b)), nil
	}
	return float64(Unsigned(b)), nil
}

// Unsigned accumulates bits MSB first into an unsigned integer
func Unsigned(b bits.Bits) uint64 {
	var v uint64
	for _, bit := range b {
		v = v<<1 | uint64(bit)
	}
	return v
}

// Signed decodes b as a two's-complement integer of len(b) bits
func Signed(b bits.Bits) int64 {
	v := int64(Unsigned(b))
	if len(b) > 0 && b[0] == 1 {
		v -= int64(1) << len(b)
	}
	return v
}

// Float16Value decodes an IEEE-754 binary16 bit pattern. Every binary16
// value is exactly representable as a float32.
func Float16Value(h uint16) float64 {
	return float64(float16.Frombits(h).Float32())
}

// Float32Value packs 32 bits into big-endian bytes and decodes them as
// IEEE-754 binary32
func Float32Value(b bits.Bits) (float64, error) {
	raw, err := bits.Bytes(b)
	if err != nil {
		return 0, err
	}
	if len(raw) != 4 {
		return 0, newError(ErrKindWidthMismatch, "float32 requires exactly 32 bits, got %d", len(b))
	}
	return float64(math.Float32frombits(binary.BigEndian.Uint32(raw))), nil
}

// Scale maps a raw value to physical units: raw*scale + offset
func Scale(raw, scale, offset float64) float64 {
	return raw*scale + offset
}
