// Package config provides persisted signal sets and preferences for canplot.
//
// This package manages a YAML file holding named signal sets, each a list of
// signal definitions that can be extracted together, plus application
// preferences. The file follows OS-specific conventions for its location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/canplot/signals.yaml or $HOME/.config/canplot/signals.yaml
//   - macOS: $HOME/.config/canplot/signals.yaml
//   - Windows: %LOCALAPPDATA%\canplot\signals.yaml
//
// # File Format
//
//	version: 1
//	sets:
//	  powertrain:
//	    signals:
//	      - id: signal_1700000000000000000_a1b2c3d4e5
//	        name: Engine RPM
//	        arbid: "0x0C0"
//	        start_bit: 16
//	        data_type: uint16
//	        endianness: big
//	        scale: 0.25
//	        color: "#1f77b4"
//	preferences:
//	  workers: 0
//	  default_format: table
//
// Stand-alone signal files passed with --signals use the same signal shape,
// either in YAML or in JSON (where the keys are arbid, startBit, dataType and
// endianness, as sent by the web client).
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.AddSignal("powertrain", signal.Config{
//	    Name:          "Engine RPM",
//	    ArbitrationID: "0x0C0",
//	    StartBit:      signal.IntPtr(16),
//	    DataType:      decode.Uint16,
//	    Endianness:    decode.BigEndian,
//	})
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
