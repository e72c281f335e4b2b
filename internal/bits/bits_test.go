package bits

import (
	"bytes"
	"testing"
)

func TestFromHex(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    string
		wantErr bool
	}{
		{name: "all ones", hex: "FF", want: "11111111"},
		{name: "0x prefix", hex: "0x0F", want: "00001111"},
		{name: "upper 0X prefix", hex: "0XA5", want: "10100101"},
		{name: "lower case digits", hex: "a5", want: "10100101"},
		{name: "two bytes", hex: "1234", want: "0001001000110100"},
		{name: "empty", hex: "", want: ""},
		{name: "prefix only", hex: "0x", want: ""},
		{name: "odd length keeps every digit", hex: "ABC", want: "101010111100"},
		{name: "single digit", hex: "0x7", want: "0111"},
		{name: "invalid digit", hex: "0G", wantErr: true},
		{name: "space", hex: "12 34", wantErr: true},
		{name: "double prefix", hex: "0x0x12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHex(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromHex(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsInvalidHex(err) {
					t.Errorf("FromHex(%q) error kind = %v, want InvalidHexDigit", tt.hex, err)
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("FromHex(%q) = %s, want %s", tt.hex, got, tt.want)
			}
		})
	}
}

func TestFromHex_BitValues(t *testing.T) {
	got, err := FromHex("0x0F")
	if err != nil {
		t.Fatalf("FromHex() error = %v", err)
	}

	want := Bits{0, 0, 0, 0, 1, 1, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestExtract(t *testing.T) {
	src, _ := FromHex("A5F0")

	tests := []struct {
		name    string
		start   int
		length  int
		want    string
		wantErr bool
	}{
		{name: "first byte", start: 0, length: 8, want: "10100101"},
		{name: "second nibble", start: 4, length: 4, want: "0101"},
		{name: "ends at last bit", start: 8, length: 8, want: "11110000"},
		{name: "single bit", start: 15, length: 1, want: "0"},
		{name: "whole payload", start: 0, length: 16, want: "1010010111110000"},
		{name: "negative start", start: -1, length: 4, wantErr: true},
		{name: "start at end", start: 16, length: 1, wantErr: true},
		{name: "range past end", start: 12, length: 8, wantErr: true},
		{name: "length past end by one", start: 0, length: 17, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(src, tt.start, tt.length)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract(%d, %d) error = %v, wantErr %v", tt.start, tt.length, err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsOutOfRange(err) {
					t.Errorf("error kind = %v, want OutOfRange", err)
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("Extract(%d, %d) = %s, want %s", tt.start, tt.length, got, tt.want)
			}
		})
	}
}

func TestExtract_ReturnsCopy(t *testing.T) {
	src, _ := FromHex("FF")
	field, err := Extract(src, 0, 4)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	field[0] = 0
	if src[0] != 1 {
		t.Error("Extract() result aliases the source sequence")
	}
}

func TestReverseBytes(t *testing.T) {
	src, _ := FromHex("3412")

	got, err := ReverseBytes(src)
	if err != nil {
		t.Fatalf("ReverseBytes() error = %v", err)
	}
	if got.String() != "0001001000110100" {
		t.Errorf("ReverseBytes() = %s, want 0x1234 bit pattern", got)
	}

	if _, err := ReverseBytes(Bits{1, 0, 1}); !IsNotByteAligned(err) {
		t.Errorf("ReverseBytes(3 bits) error = %v, want NotByteAligned", err)
	}
}

func TestNormalize(t *testing.T) {
	aligned, _ := FromHex("3412")
	unaligned := Bits{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0} // 12 bits

	tests := []struct {
		name   string
		in     Bits
		little bool
		want   string
	}{
		{name: "big endian untouched", in: aligned, little: false, want: "0011010000010010"},
		{name: "little endian reversed", in: aligned, little: true, want: "0001001000110100"},
		{name: "single byte little endian", in: Bits{1, 0, 0, 0, 0, 0, 0, 1}, little: true, want: "10000001"},
		// Non byte aligned little-endian fields are used exactly as extracted.
		// This mirrors the observed behavior and is deliberately not "fixed".
		{name: "12-bit little endian left as extracted", in: unaligned, little: true, want: "110000000010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in, tt.little); got.String() != tt.want {
				t.Errorf("Normalize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBytes(t *testing.T) {
	src, _ := FromHex("3F800000")

	got, err := Bytes(src)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x3F, 0x80, 0x00, 0x00}) {
		t.Errorf("Bytes() = % x", got)
	}

	if _, err := Bytes(Bits{1}); !IsNotByteAligned(err) {
		t.Errorf("Bytes(1 bit) error = %v, want NotByteAligned", err)
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{ErrKindInvalidHex, "InvalidHexDigit"},
		{ErrKindOutOfRange, "OutOfRange"},
		{ErrKindNotByteAligned, "NotByteAligned"},
		{ErrorKind(42), "ErrorKind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
