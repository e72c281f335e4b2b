package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/muurk/canplot/internal/signal"
)

// signalFile is the object form of a stand-alone signal file
type signalFile struct {
	Signals []signal.Config `json:"signals" yaml:"signals"`
}

// LoadSignalFile reads signal configurations from a YAML or JSON file.
// The format is chosen by extension (.json, otherwise YAML). Both a bare
// list and an object with a "signals" field are accepted.
func LoadSignalFile(path string) ([]signal.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signal file: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}

	configs, err := ParseSignals(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configs, nil
}

// ParseSignals decodes signal configurations in the given format ("json" or "yaml").
func ParseSignals(data []byte, format string) ([]signal.Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []signal.Config{}, nil
	}

	switch format {
	case "json":
		if trimmed[0] == '[' {
			var configs []signal.Config
			if err := json.Unmarshal(trimmed, &configs); err != nil {
				return nil, fmt.Errorf("failed to parse signal list: %w", err)
			}
			return configs, nil
		}
		var file signalFile
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, fmt.Errorf("failed to parse signal file: %w", err)
		}
		return file.Signals, nil

	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("failed to parse signal file: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var configs []signal.Config
			if err := node.Decode(&configs); err != nil {
				return nil, fmt.Errorf("failed to parse signal list: %w", err)
			}
			return configs, nil
		}
		var file signalFile
		if err := node.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to parse signal file: %w", err)
		}
		return file.Signals, nil

	default:
		return nil, fmt.Errorf("unsupported signal file format %q", format)
	}
}
