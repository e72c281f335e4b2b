package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/muurk/canplot/internal/decode"
	"github.com/muurk/canplot/internal/signal"
)

func testSignal(name string) signal.Config {
	return signal.Config{
		Name:          name,
		ArbitrationID: "0x100",
		StartBit:      signal.IntPtr(8),
		DataType:      decode.Uint16,
		Endianness:    decode.LittleEndian,
		Scale:         signal.FloatPtr(0.25),
	}
}

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "canplot") {
		t.Errorf("GetConfigDir() = %v, should contain 'canplot'", configDir)
	}

	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
		configDir, err = GetConfigDir()
		if err != nil {
			t.Fatalf("GetConfigDir() error = %v", err)
		}
		if configDir != filepath.Join("/tmp/xdg-test", "canplot") {
			t.Errorf("GetConfigDir() with XDG_CONFIG_HOME = %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "signals.yaml" {
		t.Errorf("GetConfigPath() should end with 'signals.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Sets == nil {
		t.Error("NewRegistry().Sets should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", reg.Preferences.DefaultFormat)
	}
}

func TestRegistryEnsureSet(t *testing.T) {
	reg := NewRegistry()

	set1 := reg.EnsureSet("powertrain")
	if set1 == nil {
		t.Fatal("EnsureSet() returned nil")
	}

	if set2 := reg.EnsureSet("powertrain"); set1 != set2 {
		t.Error("EnsureSet() should return same instance for same name")
	}

	if set3 := reg.EnsureSet("chassis"); set1 == set3 {
		t.Error("EnsureSet() should create new instance for different name")
	}

	names := reg.SetNames()
	if len(names) != 2 || names[0] != "chassis" || names[1] != "powertrain" {
		t.Errorf("SetNames() = %v, want [chassis powertrain]", names)
	}
}

func TestRegistryAddSignal(t *testing.T) {
	reg := NewRegistry()

	for i := 0; i < len(SignalColors)+2; i++ {
		stored := reg.AddSignal("bus", testSignal("s"))
		want := SignalColors[i%len(SignalColors)]
		if stored.Color != want {
			t.Errorf("signal %d color = %s, want %s", i, stored.Color, want)
		}
		if !strings.HasPrefix(stored.ID, "signal_") {
			t.Errorf("signal %d ID = %q, want signal_ prefix", i, stored.ID)
		}
	}

	set := reg.GetSet("bus")
	if len(set.Signals) != len(SignalColors)+2 {
		t.Fatalf("len(Signals) = %d", len(set.Signals))
	}
	if set.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after AddSignal()")
	}

	explicit := testSignal("fixed")
	explicit.ID = "my-id"
	explicit.Color = "#000000"
	if stored := reg.AddSignal("bus", explicit); stored.ID != "my-id" || stored.Color != "#000000" {
		t.Errorf("AddSignal() overwrote explicit fields: %+v", stored)
	}
}

func TestRegistryRemoveSignal(t *testing.T) {
	reg := NewRegistry()
	a := reg.AddSignal("bus", testSignal("a"))
	b := reg.AddSignal("bus", testSignal("b"))

	if !reg.RemoveSignal("bus", a.ID) {
		t.Fatal("RemoveSignal() = false, want true")
	}
	if reg.RemoveSignal("bus", a.ID) {
		t.Error("second RemoveSignal() = true, want false")
	}
	if reg.RemoveSignal("missing", b.ID) {
		t.Error("RemoveSignal() on missing set = true")
	}

	set := reg.GetSet("bus")
	if len(set.Signals) != 1 || set.Signals[0].ID != b.ID {
		t.Errorf("Signals after remove = %+v", set.Signals)
	}

	if !reg.DeleteSet("bus") || reg.DeleteSet("bus") {
		t.Error("DeleteSet() should succeed exactly once")
	}
}

func TestNewSignalID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSignalID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "signals.yaml")

	reg := NewRegistry()
	reg.Preferences.Workers = 4
	stored := reg.AddSignal("powertrain", testSignal("Engine RPM"))
	reg.GetSet("powertrain").Description = "engine signals"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after SaveTo()")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if loaded.Preferences.Workers != 4 {
		t.Errorf("Workers = %d, want 4", loaded.Preferences.Workers)
	}

	set := loaded.GetSet("powertrain")
	if set == nil {
		t.Fatal("set should exist in loaded registry")
	}
	if set.Description != "engine signals" {
		t.Errorf("Description = %q", set.Description)
	}
	if len(set.Signals) != 1 {
		t.Fatalf("len(Signals) = %d, want 1", len(set.Signals))
	}

	got := set.Signals[0]
	if got.ID != stored.ID || got.Name != "Engine RPM" || got.Color != stored.Color {
		t.Errorf("loaded signal = %+v, want %+v", got, stored)
	}
	if got.StartBit == nil || *got.StartBit != 8 {
		t.Errorf("StartBit = %v, want 8", got.StartBit)
	}
	if got.DataType != decode.Uint16 || got.Endianness != decode.LittleEndian {
		t.Errorf("type = %s/%s", got.DataType, got.Endianness)
	}
	if got.ScaleOrDefault() != 0.25 || got.Offset != nil {
		t.Errorf("scale/offset = %v/%v", got.Scale, got.Offset)
	}
}

func TestLoadRegistryFrom(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string // empty means no file
		wantErr bool
		verify  func(*testing.T, *Registry)
	}{
		{
			name: "missing file gives defaults",
			verify: func(t *testing.T, r *Registry) {
				if r.Version != 1 || len(r.Sets) != 0 {
					t.Errorf("unexpected registry %+v", r)
				}
			},
		},
		{
			name:    "wrong version",
			content: "version: 2\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "version: [\n",
			wantErr: true,
		},
		{
			name:    "empty set and no preferences",
			content: "version: 1\nsets:\n  empty:\n",
			verify: func(t *testing.T, r *Registry) {
				if r.GetSet("empty") == nil {
					t.Error("null set should be replaced with an empty one")
				}
				if r.Preferences == nil || r.Preferences.DefaultFormat != "table" {
					t.Error("preferences should be defaulted")
				}
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "missing.yaml")
			if tt.content != "" {
				path = filepath.Join(dir, strings.Repeat("x", i+1)+".yaml")
				if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
					t.Fatal(err)
				}
			}

			reg, err := LoadRegistryFrom(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadRegistryFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.verify != nil {
				tt.verify(t, reg)
			}
		})
	}
}

func BenchmarkAddSignal(b *testing.B) {
	reg := NewRegistry()
	cfg := testSignal("bench")
	cfg.ID = "fixed"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.AddSignal("bench", cfg)
	}
}
