// Package decode turns an extracted bit field into a number.
//
// The set of supported data types is closed. Each DataType maps to a fixed
// width and a signed/float classification through a static table; nothing is
// parsed out of the type name at runtime.
//
//	int8  int16  int24  int32    two's complement
//	uint8 uint16 uint24 uint32   plain binary
//	float16                      IEEE-754 binary16
//	float32                      IEEE-754 binary32
//
// Decode expects a field of exactly the declared width (the bounds check
// already happened in package bits) and fails fast with BitWidthMismatch
// otherwise. Scale applies the affine physical-unit transform.
package decode
