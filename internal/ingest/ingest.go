package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/muurk/canplot/internal/logging"
	"github.com/muurk/canplot/internal/signal"
)

// Format selects the encoding of a message list
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// StdinPath is the path that selects standard input
const StdinPath = "-"

// envelope is the object form emitted by the processing service
type envelope struct {
	Messages []signal.Message `json:"messages" cbor:"messages"`
}

// FormatForPath picks the format from a file extension. Anything that is not
// .cbor is treated as JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

// ReadFile loads messages from path, or from stdin when path is "-".
func ReadFile(path string) ([]signal.Message, error) {
	if path == StdinPath {
		return Read(os.Stdin, FormatJSON)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer f.Close()

	messages, err := Read(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Debug("Loaded messages",
		zap.String("path", path),
		zap.Int("count", len(messages)),
	)
	return messages, nil
}

// Read decodes a message list from r.
func Read(r io.Reader, format Format) ([]signal.Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatCBOR:
		return decodeCBOR(data)
	default:
		return nil, fmt.Errorf("unsupported message format %q", format)
	}
}

func decodeJSON(data []byte) ([]signal.Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty message input")
	}

	if trimmed[0] == '[' {
		var messages []signal.Message
		if err := json.Unmarshal(trimmed, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse message list: %w", err)
		}
		return nonNil(messages), nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message envelope: %w", err)
	}
	return nonNil(env.Messages), nil
}

func decodeCBOR(data []byte) ([]signal.Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty message input")
	}

	// Major type 4 is an array, anything else must be the envelope map
	if data[0]>>5 == 4 {
		var messages []signal.Message
		if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&messages); err != nil {
			return nil, fmt.Errorf("failed to parse message list: %w", err)
		}
		return nonNil(messages), nil
	}

	var env envelope
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse message envelope: %w", err)
	}
	return nonNil(env.Messages), nil
}

func nonNil(messages []signal.Message) []signal.Message {
	if messages == nil {
		return []signal.Message{}
	}
	return messages
}
