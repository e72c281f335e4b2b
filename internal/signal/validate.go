package signal

import (
	"fmt"
)

// Validate checks a Config against the loaded messages without failing.
// Editors call this before Extract to report every problem at once.
func Validate(cfg Config, messages []Message) Validation {
	errs := []string{}

	if cfg.ArbitrationID == "" {
		errs = append(errs, "ArbID is required")
	}
	if cfg.StartBit == nil {
		errs = append(errs, "Start bit is required")
	}
	if cfg.DataType == "" {
		errs = append(errs, "Data type is required")
	} else if !cfg.DataType.Valid() {
		errs = append(errs, fmt.Sprintf("Data type %q is not supported", cfg.DataType))
	}
	if cfg.Endianness == "" {
		errs = append(errs, "Endianness is required")
	} else if !cfg.Endianness.Valid() {
		errs = append(errs, fmt.Sprintf("Endianness %q is not supported", cfg.Endianness))
	}

	// Presence of the arbid is only checked once data is loaded
	if cfg.ArbitrationID != "" && len(messages) > 0 && !hasArbID(messages, cfg.ArbitrationID) {
		errs = append(errs, fmt.Sprintf("ArbID %s not found in data", cfg.ArbitrationID))
	}

	if cfg.ArbitrationID != "" && cfg.StartBit != nil && cfg.DataType.Valid() {
		start := *cfg.StartBit
		width := cfg.DataType.Bits()
		maxBits := int(MaxPayloadSize(messages, cfg.ArbitrationID))

		if start < 0 {
			errs = append(errs, "Start bit must be non-negative")
		}
		if start+width > maxBits {
			errs = append(errs, fmt.Sprintf("Bit range (%d + %d) exceeds payload size (%d bits)", start, width, maxBits))
		}
	}

	return Validation{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func hasArbID(messages []Message, arbID string) bool {
	for _, msg := range messages {
		if MatchArbID(msg.ArbitrationID, arbID) {
			return true
		}
	}
	return false
}
