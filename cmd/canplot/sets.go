package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/canplot/internal/config"
	"github.com/muurk/canplot/internal/decode"
	"github.com/muurk/canplot/internal/signal"
	"github.com/muurk/canplot/internal/ui"
)

// Signal definition flags for 'sets add'
var (
	sigName     string
	sigArbID    string
	sigStartBit int
	sigType     string
	sigEndian   string
	sigScale    float64
	sigOffset   float64
	sigColor    string
	setDesc     string
	forceDelete bool
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage saved signal sets",
	Long: `Manage named signal sets stored in the registry file.

A signal set is a group of signal definitions plotted together, such as
"engine" or "battery". Use 'canplot extract --set <name>' to decode one.`,
}

func init() {
	rootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(setsListCmd, setsShowCmd, setsAddCmd, setsImportCmd, setsRemoveCmd, setsDeleteCmd)

	setsAddCmd.Flags().StringVar(&sigName, "name", "", "Display name")
	setsAddCmd.Flags().StringVar(&sigArbID, "arbid", "", "Arbitration id (hex)")
	setsAddCmd.Flags().IntVar(&sigStartBit, "start-bit", 0, "First bit of the field, 0 = MSB of byte 0")
	setsAddCmd.Flags().StringVar(&sigType, "type", "", "Data type (int8, int16, int24, int32, uint8, uint16, uint24, uint32, float16, float32)")
	setsAddCmd.Flags().StringVar(&sigEndian, "endian", string(decode.BigEndian), "Byte order (big, little)")
	setsAddCmd.Flags().Float64Var(&sigScale, "scale", signal.DefaultScale, "Multiplier applied to the raw value")
	setsAddCmd.Flags().Float64Var(&sigOffset, "offset", signal.DefaultOffset, "Added after scaling")
	setsAddCmd.Flags().StringVar(&sigColor, "color", "", "Plot color (default: next palette color)")
	setsAddCmd.Flags().StringVar(&setDesc, "description", "", "Set description (applied when creating the set)")
	_ = setsAddCmd.MarkFlagRequired("arbid")
	_ = setsAddCmd.MarkFlagRequired("start-bit")
	_ = setsAddCmd.MarkFlagRequired("type")

	setsImportCmd.Flags().StringVar(&setDesc, "description", "", "Set description")
	setsDeleteCmd.Flags().BoolVar(&forceDelete, "force", false, "Delete without confirmation")
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List signal sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		names := registry.SetNames()
		if len(names) == 0 {
			fmt.Println("No signal sets saved.")
			fmt.Println("Use 'canplot sets add <set> ...' or 'canplot sets import <set> <file>' to create one.")
			return nil
		}

		for _, name := range names {
			set := registry.GetSet(name)
			line := fmt.Sprintf("%-20s %3d signals", name, len(set.Signals))
			if set.Description != "" {
				line += "  " + ui.StepNoteStyle.Render(set.Description)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var setsShowCmd = &cobra.Command{
	Use:   "show <set>",
	Short: "Show the signals in a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		set := registry.GetSet(args[0])
		if set == nil {
			return fmt.Errorf("signal set %q not found", args[0])
		}

		p := ui.NewPrinter(nil)
		params := map[string]string{"Signals": strconv.Itoa(len(set.Signals))}
		if set.Description != "" {
			params["Description"] = set.Description
		}
		if !set.UpdatedAt.IsZero() {
			params["Updated"] = set.UpdatedAt.Format("2006-01-02 15:04:05")
		}
		p.PrintHeader("Signal Set "+args[0], "canplot sets show", params)
		p.Println(ui.RenderSignalConfigs(set.Signals, p.Width()))
		return nil
	},
}

var setsAddCmd = &cobra.Command{
	Use:   "add <set>",
	Short: "Add a signal definition to a set",
	Long: `Add a signal definition to a set, creating the set if needed.

The definition is validated for supported data type and byte order before it
is saved. Use 'canplot validate' to check it against a capture.`,
	Example: `  canplot sets add engine --name "Engine RPM" --arbid 0x0C0 \
      --start-bit 16 --type uint16 --endian little --scale 0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runSetsAdd,
}

func runSetsAdd(cmd *cobra.Command, args []string) error {
	dataType, err := decode.ParseDataType(sigType)
	if err != nil {
		return err
	}
	endian, err := decode.ParseEndianness(sigEndian)
	if err != nil {
		return err
	}
	if sigStartBit < 0 {
		return fmt.Errorf("--start-bit must be non-negative")
	}

	cfg := signal.Config{
		Name:          sigName,
		ArbitrationID: sigArbID,
		StartBit:      signal.IntPtr(sigStartBit),
		DataType:      dataType,
		Endianness:    endian,
		Color:         sigColor,
	}
	if cmd.Flags().Changed("scale") {
		cfg.Scale = signal.FloatPtr(sigScale)
	}
	if cmd.Flags().Changed("offset") {
		cfg.Offset = signal.FloatPtr(sigOffset)
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	set := registry.EnsureSet(args[0])
	if set.Description == "" {
		set.Description = setDesc
	}
	stored := registry.AddSignal(args[0], cfg)

	if err := saveRegistry(registry); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s) to set %q\n", stored.NameOrDefault(), stored.ID, args[0])
	return nil
}

var setsImportCmd = &cobra.Command{
	Use:   "import <set> <file>",
	Short: "Import signal definitions from a YAML or JSON file",
	Long: `Append every signal definition in a YAML or JSON file to a set.

The file may hold a bare list of signals or an object with a "signals"
field. Definitions without an id get a new one.`,
	Example: `  canplot sets import engine engine-signals.yaml`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := config.LoadSignalFile(args[1])
		if err != nil {
			return err
		}

		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		set := registry.EnsureSet(args[0])
		if setDesc != "" {
			set.Description = setDesc
		}
		for _, cfg := range configs {
			registry.AddSignal(args[0], cfg)
		}

		if err := saveRegistry(registry); err != nil {
			return err
		}

		fmt.Printf("Imported %d signals into set %q\n", len(configs), args[0])
		return nil
	},
}

var setsRemoveCmd = &cobra.Command{
	Use:   "remove <set> <signal-id>",
	Short: "Remove a signal from a set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		if !registry.RemoveSignal(args[0], args[1]) {
			return fmt.Errorf("signal %q not found in set %q", args[1], args[0])
		}
		if err := saveRegistry(registry); err != nil {
			return err
		}

		fmt.Printf("Removed %s from set %q\n", args[1], args[0])
		return nil
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <set>",
	Short: "Delete a whole signal set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		set := registry.GetSet(args[0])
		if set == nil {
			return fmt.Errorf("signal set %q not found", args[0])
		}

		if !forceDelete && !ui.ConfirmDeleteSet(os.Stdin, os.Stdout, args[0], len(set.Signals)) {
			return nil
		}

		registry.DeleteSet(args[0])
		if err := saveRegistry(registry); err != nil {
			return err
		}

		fmt.Printf("Deleted set %q\n", args[0])
		return nil
	},
}
