package signal

import (
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/muurk/canplot/internal/bits"
	"github.com/muurk/canplot/internal/decode"
	"github.com/muurk/canplot/internal/logging"
)

// DefaultPayloadBits is reported by MaxPayloadSize when no message matches
const DefaultPayloadBits = 64

// defaultLengthBytes stands in for a message with no length
const defaultLengthBytes = 8

// Extractor evaluates signal configurations against a message list
type Extractor struct {
	// Workers bounds the goroutines used by ExtractMultiple.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Workers int

	// OnResult, when set, is called as each config finishes, from the
	// worker goroutine that ran it. err is non-nil for an invalid config.
	OnResult func(index int, res *Result, err error)
}

// NewExtractor creates an Extractor with the default worker count
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes one signal from every matching message.
//
// A Config missing a required field fails the whole call with a
// *ConfigError. Messages that fail to decode are skipped and recorded in
// Result.Skipped; they never fail the call.
func Extract(messages []Message, cfg Config) (*Result, error) {
	if missing := cfg.missingFields(); len(missing) > 0 {
		return nil, &ConfigError{SignalID: cfg.ID, Missing: missing}
	}

	width := cfg.DataType.Bits()
	little := cfg.Endianness == decode.LittleEndian
	scale := cfg.ScaleOrDefault()
	offset := cfg.OffsetOrDefault()

	res := &Result{
		SignalID:   cfg.ID,
		SignalName: cfg.NameOrDefault(),
		DataPoints: []DataPoint{},
	}

	matched := 0
	for i, msg := range messages {
		if !MatchArbID(msg.ArbitrationID, cfg.ArbitrationID) {
			continue
		}
		matched++

		raw, err := decodeMessage(msg, *cfg.StartBit, width, little, cfg.DataType)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{
				Index:     i,
				Timestamp: msg.Timestamp,
				Reason:    classify(err),
				Message:   err.Error(),
				err:       err,
			})
			logging.LogSkippedMessage(cfg.ID, i, msg.Timestamp, err)
			continue
		}

		res.DataPoints = append(res.DataPoints, DataPoint{
			Timestamp:     msg.Timestamp,
			RawValue:      raw,
			PhysicalValue: decode.Scale(raw, scale, offset),
		})
	}

	logging.LogSignalExtracted(res.SignalID, res.SignalName, matched, len(res.DataPoints), len(res.Skipped))

	return res, nil
}

// decodeMessage runs a single payload through the decode pipeline
func decodeMessage(msg Message, start, width int, little bool, typ decode.DataType) (float64, error) {
	payload, err := bits.FromHex(msg.Payload)
	if err != nil {
		return 0, err
	}

	field, err := bits.Extract(payload, start, width)
	if err != nil {
		return 0, err
	}

	return decode.Decode(bits.Normalize(field, little), typ)
}

// ExtractMultiple evaluates each config independently using the default
// Extractor. Results are returned in config order.
func ExtractMultiple(messages []Message, configs []Config) ([]*Result, error) {
	return NewExtractor().ExtractMultiple(messages, configs)
}

// ExtractMultiple evaluates each config independently, in parallel.
// Results are returned in config order. If any config is invalid the call
// fails with the error of the first invalid config (in config order).
func (e *Extractor) ExtractMultiple(messages []Message, configs []Config) ([]*Result, error) {
	results := make([]*Result, len(configs))
	errs := make([]error, len(configs))

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(configs) {
		workers = len(configs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = Extract(messages, configs[idx])
				if e.OnResult != nil {
					e.OnResult(idx, results[idx], errs[idx])
				}
			}
		}()
	}

	for idx := range configs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// MatchArbID compares arbitration ids case-insensitively.
// No prefix or zero-padding normalization is applied.
func MatchArbID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// UniqueArbIDs returns the distinct arbitration ids in plain lexicographic
// order, so "0x10" sorts before "0x2".
func UniqueArbIDs(messages []Message) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, msg := range messages {
		if _, ok := seen[msg.ArbitrationID]; ok {
			continue
		}
		seen[msg.ArbitrationID] = struct{}{}
		ids = append(ids, msg.ArbitrationID)
	}
	sort.Strings(ids)
	return ids
}

// MaxPayloadSize returns the largest payload, in bits, among messages
// matching arbID. A message with no length counts as 8 bytes. When nothing
// matches the result is 64.
func MaxPayloadSize(messages []Message, arbID string) uint32 {
	maxLen := uint32(0)
	found := false
	for _, msg := range messages {
		if !MatchArbID(msg.ArbitrationID, arbID) {
			continue
		}
		found = true

		length := uint32(msg.Length)
		if length == 0 {
			length = defaultLengthBytes
		}
		if length > maxLen {
			maxLen = length
		}
	}

	if !found {
		return DefaultPayloadBits
	}
	return maxLen * 8
}
