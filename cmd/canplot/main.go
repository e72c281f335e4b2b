// Canplot decodes physical signal traces out of recorded CAN bus traffic.
//
// It reads a list of reassembled CAN messages, extracts one or more signals
// described by bit position, data type, endianness and linear scaling, and
// prints or exports the resulting time series. The same engine is available
// over HTTP and WebSocket with 'canplot serve'.
//
// Usage:
//
//	canplot [command] [flags]
//
// See 'canplot --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/canplot/internal/config"
	"github.com/muurk/canplot/internal/logging"
	"github.com/muurk/canplot/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var registryPath string

var rootCmd = &cobra.Command{
	Use:   "canplot",
	Short: "CAN signal extraction and plotting backend",
	Long: `Extract physical signal traces from recorded CAN bus messages.

Signals are described by arbitration id, start bit, data type (int8 to
uint32, float16, float32), byte order and a linear scale and offset.
Definitions can be kept in named signal sets ('canplot sets') or loaded from
a YAML or JSON file.

Set CANPLOT_LOG_LEVEL to debug, info, warn or error to enable logging.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&registryPath, "config", "", "Signal set registry file (default: user config dir)")

	rootCmd.AddCommand(versionCmd)
}

// loadRegistry returns the registry at --config, or the default one
func loadRegistry() (*config.Registry, error) {
	if registryPath != "" {
		return config.LoadRegistryFrom(registryPath)
	}
	return config.LoadRegistry()
}

// saveRegistry writes the registry back to where it was loaded from
func saveRegistry(r *config.Registry) error {
	if registryPath != "" {
		return r.SaveTo(registryPath)
	}
	return r.Save()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Info()
		fmt.Printf("canplot %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
