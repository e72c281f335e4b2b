package signal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/canplot/internal/bits"
	"github.com/muurk/canplot/internal/decode"
)

// ErrInvalidConfig is matched by errors.Is for any configuration error
var ErrInvalidConfig = errors.New("invalid signal configuration")

// ConfigError reports the required fields missing from a Config
type ConfigError struct {
	SignalID string
	Missing  []string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%v: missing required fields: %s", ErrInvalidConfig, strings.Join(e.Missing, ", "))
	if e.SignalID != "" {
		msg += fmt.Sprintf(" (signal %s)", e.SignalID)
	}
	return msg
}

// Is lets errors.Is(err, ErrInvalidConfig) match
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsInvalidConfig checks if an error is a fatal configuration error
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// SkipReason classifies why a message was skipped
type SkipReason string

const (
	ReasonInvalidHex      SkipReason = "InvalidHexDigit"
	ReasonOutOfRange      SkipReason = "OutOfRange"
	ReasonWidthMismatch   SkipReason = "BitWidthMismatch"
	ReasonUnsupportedType SkipReason = "UnsupportedDataType"
	ReasonUnknown         SkipReason = "Unknown"
)

// classify maps a per-record decode error onto a SkipReason
func classify(err error) SkipReason {
	switch {
	case bits.IsInvalidHex(err):
		return ReasonInvalidHex
	case bits.IsOutOfRange(err):
		return ReasonOutOfRange
	case decode.IsWidthMismatch(err):
		return ReasonWidthMismatch
	case decode.IsUnsupportedType(err):
		return ReasonUnsupportedType
	default:
		return ReasonUnknown
	}
}
