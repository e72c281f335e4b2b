package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/canplot/internal/client"
	"github.com/muurk/canplot/internal/config"
	"github.com/muurk/canplot/internal/decode"
	"github.com/muurk/canplot/internal/discovery"
	"github.com/muurk/canplot/internal/signal"
)

func TestResolveSignals(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "signals.yaml")
	content := `signals:
  - id: rpm
    name: Engine RPM
    arbid: "0x0C0"
    start_bit: 16
    data_type: uint16
    endianness: little
`
	if err := os.WriteFile(file, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	registry := config.NewRegistry()
	registry.AddSignal("engine", signal.Config{
		ID: "coolant", ArbitrationID: "0x0C1", StartBit: signal.IntPtr(0),
		DataType: decode.Int8, Endianness: decode.BigEndian,
	})

	tests := []struct {
		name       string
		signals    string
		set        string
		wantID     string
		wantSource string
		wantErr    bool
	}{
		{name: "from file", signals: file, wantID: "rpm", wantSource: file},
		{name: "from set", set: "engine", wantID: "coolant", wantSource: "set engine"},
		{name: "unknown set", set: "brakes", wantErr: true},
		{name: "missing file", signals: filepath.Join(dir, "nope.yaml"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signalsPath, setName = tt.signals, tt.set
			t.Cleanup(func() { signalsPath, setName = "", "" })

			configs, source, err := resolveSignals(registry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveSignals() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(configs) != 1 || configs[0].ID != tt.wantID {
				t.Errorf("resolveSignals() = %+v, want one signal %q", configs, tt.wantID)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestWorkersLabel(t *testing.T) {
	if got := workersLabel(0); got != "auto" {
		t.Errorf("workersLabel(0) = %q, want auto", got)
	}
	if got := workersLabel(4); got != "4" {
		t.Errorf("workersLabel(4) = %q, want 4", got)
	}
}

func TestRegistryRoundTripViaConfigFlag(t *testing.T) {
	registryPath = filepath.Join(t.TempDir(), "signals.yaml")
	t.Cleanup(func() { registryPath = "" })

	registry, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry() error = %v", err)
	}
	registry.AddSignal("battery", signal.Config{ArbitrationID: "0x3A0", StartBit: signal.IntPtr(0), DataType: decode.Uint16, Endianness: decode.BigEndian})
	if err := saveRegistry(registry); err != nil {
		t.Fatalf("saveRegistry() error = %v", err)
	}

	reloaded, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry() error = %v", err)
	}
	if set := reloaded.GetSet("battery"); set == nil || len(set.Signals) != 1 {
		t.Fatalf("reloaded set = %+v, want one signal", set)
	}
}

func TestRunExtract_OutputFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	msgs := filepath.Join(dir, "capture.json")
	sigs := filepath.Join(dir, "signals.yaml")
	if err := os.WriteFile(msgs, []byte(`[{"timestamp":0.5,"arbitration_id":"0x0C0","payload":"0011223344556677","length":8}]`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sigs, []byte(`signals:
  - id: rpm
    name: Engine RPM
    arbid: "0x0C0"
    start_bit: 16
    data_type: uint16
    endianness: little
`), 0600); err != nil {
		t.Fatal(err)
	}

	messagesPath, signalsPath = msgs, sigs
	outputPath = filepath.Join(dir, "out.csv")
	registryPath = filepath.Join(dir, "registry.yaml")
	t.Cleanup(func() {
		messagesPath, signalsPath, outputPath, registryPath, outputFormat = "", "", "", "", ""
	})

	if err := runExtract(extractCmd, nil); err != nil {
		t.Fatalf("runExtract() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d CSV lines, want header and one row:\n%s", len(lines), data)
	}
	if lines[0] != "signal_id,signal_name,timestamp,raw_value,physical_value" {
		t.Errorf("header = %q", lines[0])
	}
	if want := "rpm,Engine RPM,0.5,13090,13090"; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestRemoteHints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rejected definition", err: &client.APIError{StatusCode: http.StatusUnprocessableEntity}, want: "canplot validate"},
		{name: "body too large", err: &client.APIError{StatusCode: http.StatusRequestEntityTooLarge}, want: "--max-body-mb"},
		{name: "network", err: &client.NetworkError{URL: "http://x", Err: errors.New("refused")}, want: "canplot scan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := strings.Join(remoteHints(tt.err), "\n")
			if !strings.Contains(hints, tt.want) {
				t.Errorf("remoteHints() = %q, want mention of %q", hints, tt.want)
			}
		})
	}
}

func TestResolveRemote(t *testing.T) {
	orig := lookupPeer
	t.Cleanup(func() { lookupPeer = orig })

	var looked []string
	lookupPeer = func(ctx context.Context, instance string) (*discovery.Peer, error) {
		looked = append(looked, instance)
		if instance != "canplot-lab" {
			return nil, errors.New("not found")
		}
		return &discovery.Peer{Instance: instance, IP: "10.0.0.5", Port: 8443, Metadata: map[string]string{"tls": "true"}}, nil
	}

	tests := []struct {
		name    string
		target  string
		want    string
		wantErr bool
	}{
		{name: "url unchanged", target: "http://10.0.0.9:8080", want: "http://10.0.0.9:8080"},
		{name: "instance name", target: "canplot-lab", want: "https://10.0.0.5:8443"},
		{name: "unknown instance", target: "canplot-missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRemote(context.Background(), tt.target)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveRemote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveRemote() = %q, want %q", got, tt.want)
			}
		})
	}

	if len(looked) != 2 {
		t.Errorf("looked up %v, want only the two instance names", looked)
	}
}
