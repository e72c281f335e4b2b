// Package ingest reads CAN message lists produced by the upstream log
// processing service.
//
// Two shapes are accepted in JSON: a bare array of message records, or an
// object carrying the array in a "messages" field. CBOR input, as written by
// the export package, is accepted with the same two shapes.
//
//	[
//	  {"timestamp": 0.001, "arbitration_id": "0x1A0", "payload": "0011223344556677", "length": 8},
//	  ...
//	]
//
// Records are decoded as-is. Payload problems are not checked here; they
// surface later as skipped messages during extraction.
package ingest
