package decode

import (
	"fmt"
	"strings"
)

// DataType identifies how a bit field is interpreted
type DataType string

const (
	Int8    DataType = "int8"
	Int16   DataType = "int16"
	Int24   DataType = "int24"
	Int32   DataType = "int32"
	Uint8   DataType = "uint8"
	Uint16  DataType = "uint16"
	Uint24  DataType = "uint24"
	Uint32  DataType = "uint32"
	Float16 DataType = "float16"
	Float32 DataType = "float32"
)

// TypeInfo describes the layout of a data type
type TypeInfo struct {
	Bits   int    `json:"bits"`
	Signed bool   `json:"signed"`
	Float  bool   `json:"float"`
	Label  string `json:"label"`
}

// typeTable is the single source of truth for data type widths
var typeTable = map[DataType]TypeInfo{
	Int8:    {Bits: 8, Signed: true, Label: "int8 (8-bit signed)"},
	Int16:   {Bits: 16, Signed: true, Label: "int16 (16-bit signed)"},
	Int24:   {Bits: 24, Signed: true, Label: "int24 (24-bit signed)"},
	Int32:   {Bits: 32, Signed: true, Label: "int32 (32-bit signed)"},
	Uint8:   {Bits: 8, Label: "uint8 (8-bit unsigned)"},
	Uint16:  {Bits: 16, Label: "uint16 (16-bit unsigned)"},
	Uint24:  {Bits: 24, Label: "uint24 (24-bit unsigned)"},
	Uint32:  {Bits: 32, Label: "uint32 (32-bit unsigned)"},
	Float16: {Bits: 16, Signed: true, Float: true, Label: "float16 (half precision)"},
	Float32: {Bits: 32, Signed: true, Float: true, Label: "float32 (single precision)"},
}

// DataTypes lists every supported type in display order
var DataTypes = []DataType{
	Int8, Int16, Int24, Int32,
	Uint8, Uint16, Uint24, Uint32,
	Float16, Float32,
}

// Info returns the layout of the data type and whether it is known
func (d DataType) Info() (TypeInfo, bool) {
	info, ok := typeTable[d]
	return info, ok
}

// Valid reports whether d is one of the supported types
func (d DataType) Valid() bool {
	_, ok := typeTable[d]
	return ok
}

// Bits returns the field width in bits, or 0 for an unknown type
func (d DataType) Bits() int {
	return typeTable[d].Bits
}

// Label returns the human-readable option label
func (d DataType) Label() string {
	if info, ok := typeTable[d]; ok {
		return info.Label
	}
	return string(d)
}

// ParseDataType converts a type name such as "uint16" into a DataType
func ParseDataType(s string) (DataType, error) {
	d := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", newError(ErrKindUnsupportedType, "unsupported data type: %q", s)
	}
	return d, nil
}

// Endianness is the byte order of a multi-byte field
type Endianness string

const (
	BigEndian    Endianness = "big"
	LittleEndian Endianness = "little"
)

// Endiannesses lists the byte orders in display order
var Endiannesses = []Endianness{BigEndian, LittleEndian}

// Valid reports whether e is big or little
func (e Endianness) Valid() bool {
	return e == BigEndian || e == LittleEndian
}

// Label returns the human-readable option label
func (e Endianness) Label() string {
	switch e {
	case BigEndian:
		return "Big Endian (MSB first)"
	case LittleEndian:
		return "Little Endian (LSB first)"
	default:
		return string(e)
	}
}

// ParseEndianness converts "big" or "little" into an Endianness
func ParseEndianness(s string) (Endianness, error) {
	e := Endianness(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("unsupported endianness: %q (expected big or little)", s)
	}
	return e, nil
}
