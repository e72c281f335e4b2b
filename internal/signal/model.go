package signal

import (
	"encoding/json"
	"math"

	"github.com/muurk/canplot/internal/decode"
)

// Defaults for optional Config fields
const (
	DefaultScale  = 1.0
	DefaultOffset = 0.0
	DefaultName   = "Unnamed Signal"
)

// Message is one reassembled CAN frame as delivered by the ingestion service
type Message struct {
	Timestamp     float64 `json:"timestamp" cbor:"timestamp"`           // Seconds
	ArbitrationID string  `json:"arbitration_id" cbor:"arbitration_id"` // Hex, case-insensitive
	Payload       string  `json:"payload" cbor:"payload"`               // Even-length hex, optional 0x
	Length        uint8   `json:"length" cbor:"length"`                 // Bytes; 0 means unknown
}

// Config describes where a signal lives in a frame and how to scale it
type Config struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	ArbitrationID string            `json:"arbid" yaml:"arbid"`
	StartBit      *int              `json:"startBit" yaml:"start_bit"` // nil means missing
	DataType      decode.DataType   `json:"dataType" yaml:"data_type"`
	Endianness    decode.Endianness `json:"endianness" yaml:"endianness"`
	Scale         *float64          `json:"scale,omitempty" yaml:"scale,omitempty"`
	Offset        *float64          `json:"offset,omitempty" yaml:"offset,omitempty"`
	Color         string            `json:"color,omitempty" yaml:"color,omitempty"` // Display hint only
}

// IntPtr returns a pointer to v, for building a Config.StartBit
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v, for building Config.Scale and Config.Offset
func FloatPtr(v float64) *float64 {
	return &v
}

// ScaleOrDefault returns the configured scale, or 1.0 when unset
func (c Config) ScaleOrDefault() float64 {
	if c.Scale == nil {
		return DefaultScale
	}
	return *c.Scale
}

// OffsetOrDefault returns the configured offset, or 0.0 when unset
func (c Config) OffsetOrDefault() float64 {
	if c.Offset == nil {
		return DefaultOffset
	}
	return *c.Offset
}

// NameOrDefault returns the configured name, or "Unnamed Signal"
func (c Config) NameOrDefault() string {
	if c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// missingFields lists the required fields that are absent
func (c Config) missingFields() []string {
	var missing []string
	if c.ArbitrationID == "" {
		missing = append(missing, "arbid")
	}
	if c.StartBit == nil {
		missing = append(missing, "startBit")
	}
	if c.DataType == "" {
		missing = append(missing, "dataType")
	}
	if c.Endianness == "" {
		missing = append(missing, "endianness")
	}
	return missing
}

// DataPoint is one decoded sample
type DataPoint struct {
	Timestamp     float64 `json:"timestamp" cbor:"timestamp"`
	RawValue      float64 `json:"rawValue" cbor:"rawValue"`
	PhysicalValue float64 `json:"physicalValue" cbor:"physicalValue"`
}

// MarshalJSON writes NaN and infinities as null, since JSON has no
// representation for them.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp     *float64 `json:"timestamp"`
		RawValue      *float64 `json:"rawValue"`
		PhysicalValue *float64 `json:"physicalValue"`
	}{
		Timestamp:     finite(p.Timestamp),
		RawValue:      finite(p.RawValue),
		PhysicalValue: finite(p.PhysicalValue),
	})
}

// UnmarshalJSON reads null values back as NaN
func (p *DataPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp     *float64 `json:"timestamp"`
		RawValue      *float64 `json:"rawValue"`
		PhysicalValue *float64 `json:"physicalValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Timestamp = orNaN(raw.Timestamp)
	p.RawValue = orNaN(raw.RawValue)
	p.PhysicalValue = orNaN(raw.PhysicalValue)
	return nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Skip records a message that matched the signal but could not be decoded
type Skip struct {
	Index     int        `json:"index" cbor:"index"` // Position in the input message list
	Timestamp float64    `json:"timestamp" cbor:"timestamp"`
	Reason    SkipReason `json:"reason" cbor:"reason"`
	Message   string     `json:"error" cbor:"error"`
	err       error
}

// Err returns the underlying decode error
func (s Skip) Err() error {
	return s.err
}

// Result is the decoded trace of one signal
type Result struct {
	SignalID   string      `json:"signalId" cbor:"signalId"`
	SignalName string      `json:"signalName" cbor:"signalName"`
	DataPoints []DataPoint `json:"dataPoints" cbor:"dataPoints"`
	Skipped    []Skip      `json:"skipped,omitempty" cbor:"skipped,omitempty"`
}

// Validation is the outcome of Validate
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
