// Package signal is the extraction facade: it turns a list of CAN messages
// and a set of signal configurations into plottable data points.
//
// # Pipeline
//
// For every message whose arbitration id matches the signal (compared
// case-insensitively), the payload goes through:
//
//	bits.FromHex -> bits.Extract -> bits.Normalize -> decode.Decode -> decode.Scale
//
// # Failure Model
//
// There are two tiers of failure:
//   - A malformed Config (missing arbid, start bit, data type or endianness)
//     aborts Extract before any message is looked at.
//   - A message that cannot be decoded (bad hex, field out of range, width
//     mismatch) is skipped. The skip is recorded on the Result and processing
//     continues, so one bad frame never invalidates a trace.
//
// # Usage Example
//
//	start := 16
//	cfg := signal.Config{
//	    ID:            "rpm",
//	    Name:          "Engine Speed",
//	    ArbitrationID: "0x0C0",
//	    StartBit:      &start,
//	    DataType:      decode.Uint16,
//	    Endianness:    decode.LittleEndian,
//	    Scale:         0.25,
//	}
//
//	res, err := signal.Extract(messages, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d points, %d skipped\n", len(res.DataPoints), len(res.Skipped))
//
// # Thread Safety
//
// Inputs are never mutated. ExtractMultiple fans configs out across
// goroutines and reassembles results in config order.
package signal
