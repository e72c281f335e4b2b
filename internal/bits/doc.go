// Package bits converts CAN payloads into bit sequences and slices them.
//
// A payload is carried as a string of hex digits. Each digit expands to
// exactly four bits, most-significant bit first, so bit 0 of the sequence is
// the MSB of the first payload byte:
//
//	payload "A5"  ->  1 0 1 0 0 1 0 1
//	                  ^ bit 0       ^ bit 7
//
// # Operations
//
//   - FromHex: hex string (optional 0x prefix) to Bits
//   - Extract: bounded sub-range [start, start+length)
//   - Normalize: byte-order correction for little-endian, byte-aligned fields
//   - ReverseBytes / Bytes: byte level helpers used by the decoders
//
// Extract is the only bounds check in the decode path. Everything downstream
// assumes it receives a sequence of exactly the width it asked for.
//
// # Errors
//
// All failures are returned as *Error with a Kind, so callers can tell a bad
// hex digit from an out-of-range field without string matching:
//
//	b, err := bits.FromHex(msg.Payload)
//	if bits.IsInvalidHex(err) {
//	    // skip the record
//	}
//
// All functions are pure and safe for concurrent use.
package bits
