package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/canplot/internal/decode"
)

func TestValidate(t *testing.T) {
	messages := []Message{
		{ArbitrationID: "0x10", Payload: "0011", Length: 2},
		{ArbitrationID: "0x20", Payload: "0011223344556677", Length: 8},
	}

	tests := []struct {
		name     string
		cfg      Config
		messages []Message
		want     []string
	}{
		{
			name:     "valid",
			cfg:      u8Config("0x10", 8),
			messages: messages,
			want:     []string{},
		},
		{
			name:     "arbid compared case-insensitively",
			cfg:      u8Config("0X20", 56),
			messages: messages,
			want:     []string{},
		},
		{
			name:     "all required fields missing",
			cfg:      Config{},
			messages: messages,
			want: []string{
				"ArbID is required",
				"Start bit is required",
				"Data type is required",
				"Endianness is required",
			},
		},
		{
			name:     "arbid not in data",
			cfg:      u8Config("0x99", 0),
			messages: messages,
			want:     []string{"ArbID 0x99 not found in data"},
		},
		{
			name:     "no data loaded skips presence check",
			cfg:      u8Config("0x99", 0),
			messages: nil,
			want:     []string{},
		},
		{
			name:     "range exceeds payload",
			cfg:      u8Config("0x10", 12),
			messages: messages,
			want:     []string{"Bit range (12 + 8) exceeds payload size (16 bits)"},
		},
		{
			name:     "negative start",
			cfg:      u8Config("0x10", -1),
			messages: messages,
			want:     []string{"Start bit must be non-negative"},
		},
		{
			name: "unsupported type",
			cfg: Config{
				ArbitrationID: "0x10",
				StartBit:      IntPtr(0),
				DataType:      decode.DataType("int64"),
				Endianness:    decode.BigEndian,
			},
			messages: messages,
			want:     []string{`Data type "int64" is not supported`},
		},
		{
			name: "unsupported endianness",
			cfg: Config{
				ArbitrationID: "0x10",
				StartBit:      IntPtr(0),
				DataType:      decode.Uint8,
				Endianness:    decode.Endianness("middle"),
			},
			messages: messages,
			want:     []string{`Endianness "middle" is not supported`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.cfg, tt.messages)
			assert.Equal(t, tt.want, got.Errors)
			assert.Equal(t, len(tt.want) == 0, got.Valid)
		})
	}
}
