// Package export writes extracted signal traces as JSON, CBOR or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/muurk/canplot/internal/signal"
)

// Format selects the output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats in help order
var Formats = []Format{FormatJSON, FormatCBOR, FormatCSV}

// CSVHeader is the first row written by WriteCSV
var CSVHeader = []string{"signal_id", "signal_name", "timestamp", "raw_value", "physical_value"}

// ParseFormat converts a user supplied name into a Format
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q (want json, cbor or csv)", name)
}

// FormatForPath picks a format from the file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return FormatCBOR
	case ".csv":
		return FormatCSV
	default:
		return FormatJSON
	}
}

// Write encodes results to w in the given format.
func Write(w io.Writer, results []*signal.Result, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatCBOR:
		return WriteCBOR(w, results)
	case FormatCSV:
		return WriteCSV(w, results)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile writes results to path, choosing the format from its extension.
func WriteFile(path string, results []*signal.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(f, results, FormatForPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteJSON writes an indented JSON array. Non-finite values become null.
func WriteJSON(w io.Writer, results []*signal.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nonNil(results))
}

// WriteCBOR writes a CBOR array. NaN and infinities are kept as-is.
func WriteCBOR(w io.Writer, results []*signal.Result) error {
	return cbor.NewEncoder(w).Encode(nonNil(results))
}

// WriteCSV writes one row per data point, in signal then input order.
func WriteCSV(w io.Writer, results []*signal.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, res := range results {
		for _, p := range res.DataPoints {
			row := []string{
				res.SignalID,
				res.SignalName,
				formatFloat(p.Timestamp),
				formatFloat(p.RawValue),
				formatFloat(p.PhysicalValue),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nonNil(results []*signal.Result) []*signal.Result {
	if results == nil {
		return []*signal.Result{}
	}
	return results
}
