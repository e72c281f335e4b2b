package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/canplot/internal/client"
	"github.com/muurk/canplot/internal/config"
	"github.com/muurk/canplot/internal/export"
	"github.com/muurk/canplot/internal/ingest"
	"github.com/muurk/canplot/internal/signal"
	"github.com/muurk/canplot/internal/ui"
)

const formatTable = "table"

// Extraction command flags
var (
	messagesPath string
	signalsPath  string
	setName      string
	outputFormat string
	outputPath   string
	workers      int
	showPoints   int
	arbID        string
	remoteURL    string
)

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(arbidsCmd)
	rootCmd.AddCommand(payloadSizeCmd)
	rootCmd.AddCommand(validateCmd)

	for _, cmd := range []*cobra.Command{extractCmd, arbidsCmd, payloadSizeCmd, validateCmd} {
		cmd.Flags().StringVarP(&messagesPath, "messages", "m", "", "Message file (.json or .cbor, - for stdin)")
		cmd.Flags().StringVar(&remoteURL, "remote", "", "Run on a canplot server instead of locally (URL or mDNS instance name)")
		_ = cmd.MarkFlagRequired("messages")
	}
	for _, cmd := range []*cobra.Command{extractCmd, validateCmd} {
		cmd.Flags().StringVarP(&signalsPath, "signals", "s", "", "Signal definition file (.yaml or .json)")
		cmd.Flags().StringVar(&setName, "set", "", "Named signal set from the registry")
		cmd.MarkFlagsMutuallyExclusive("signals", "set")
		cmd.MarkFlagsOneRequired("signals", "set")
	}
}

// extractCmd decodes signals into time series
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract signal traces from CAN messages",
	Long: `Decode every signal definition against the message list.

Signals are extracted in parallel. Messages whose payload cannot be decoded
(invalid hex, bit range past the payload) are skipped and counted rather
than aborting the run. A signal definition missing a required field aborts
the whole batch.

With --format table (the default) a summary is printed to the terminal. The
json, cbor and csv formats write the full traces to stdout, or to --output.`,
	Example: `  # Summary table for a stand-alone signal file
  canplot extract -m capture.json -s signals.yaml

  # Use a saved signal set and show the first 20 points of each trace
  canplot extract -m capture.json --set engine --points 20

  # Export CSV for a spreadsheet
  canplot extract -m capture.json --set engine --output engine.csv

  # Pipe messages in and JSON out
  cat capture.json | canplot extract -m - -s signals.yaml --format json

  # Decode on a server found with 'canplot scan'
  canplot extract -m capture.json --set engine --remote http://10.0.0.5:8080

  # Same, addressing the server by its mDNS instance name
  canplot extract -m capture.json --set engine --remote canplot-lab`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format (table, json, cbor, csv); default from preferences")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to a file; format from the extension unless --format is set")
	extractCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Extraction goroutines (0 = GOMAXPROCS or preferences)")
	extractCmd.Flags().IntVar(&showPoints, "points", 0, "Data points to print per signal in table format")
}

func runExtract(cmd *cobra.Command, args []string) error {
	messages, err := ingest.ReadFile(messagesPath)
	if err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	configs, source, err := resolveSignals(registry)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("workers") {
		workers = registry.Preferences.Workers
	}

	format := outputFormat
	switch {
	case format != "":
	case outputPath != "":
		format = string(export.FormatForPath(outputPath))
	default:
		format = registry.Preferences.DefaultFormat
	}

	if format == "" || format == formatTable {
		if outputPath != "" {
			return fmt.Errorf("--output needs a json, cbor or csv format")
		}
		if remoteURL != "" {
			return printRemoteExtraction(messages, configs, source)
		}
		return printExtraction(messages, configs, source)
	}

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	var results []*signal.Result
	if remoteURL != "" {
		remote, rerr := remoteClient(context.Background())
		if rerr != nil {
			return rerr
		}
		results, err = remote.Extract(context.Background(), messages, configs)
	} else {
		extractor := &signal.Extractor{Workers: workers}
		results, err = extractor.ExtractMultiple(messages, configs)
	}
	if err != nil {
		return err
	}

	if outputPath == "" {
		return export.Write(os.Stdout, results, exportFormat)
	}
	if err := writeOutput(results, exportFormat); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Wrote %d signals to %s\n", len(results), outputPath)
	return nil
}

// writeOutput writes results to --output. Without --format the file
// extension decides the encoding.
func writeOutput(results []*signal.Result, format export.Format) error {
	if outputFormat == "" {
		return export.WriteFile(outputPath, results)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.Write(f, results, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return f.Close()
}

// printExtraction runs the batch with terminal progress and a summary table
func printExtraction(messages []signal.Message, configs []signal.Config, source string) error {
	runner := ui.NewExtractRunner(ui.ExtractRunnerConfig{
		Title:   "Signal Extraction",
		Command: "canplot extract",
		Params: map[string]string{
			"Messages": fmt.Sprintf("%s (%d)", messagesPath, len(messages)),
			"Signals":  fmt.Sprintf("%s (%d)", source, len(configs)),
			"Workers":  workersLabel(workers),
		},
		Workers: workers,
	})

	results, err := runner.Run(messages, configs)
	if err != nil {
		return err
	}

	printSummary(results, configs)
	return nil
}

// printRemoteExtraction decodes on a server and prints the same summary
func printRemoteExtraction(messages []signal.Message, configs []signal.Config, source string) error {
	p := ui.NewPrinter(nil)
	p.PrintHeader("Signal Extraction", "canplot extract", map[string]string{
		"Messages": fmt.Sprintf("%s (%d)", messagesPath, len(messages)),
		"Signals":  fmt.Sprintf("%s (%d)", source, len(configs)),
		"Remote":   remoteURL,
	})

	remote, err := remoteClient(context.Background())
	if err != nil {
		p.PrintError("Server not found", err, remoteHints(err))
		return err
	}

	results, err := remote.Extract(context.Background(), messages, configs)
	if err != nil {
		p.PrintError("Remote extraction failed", err, remoteHints(err))
		return err
	}

	points := 0
	for _, res := range results {
		points += len(res.DataPoints)
	}
	p.PrintSuccess(fmt.Sprintf("Extracted %d signals", len(results)), map[string]string{
		"Data points": strconv.Itoa(points),
		"Server":      remote.BaseURL,
	})

	printSummary(results, configs)
	return nil
}

// remoteHints suggests a next step for a failed remote call
func remoteHints(err error) []string {
	switch {
	case client.IsInvalidConfig(err):
		return []string{"Run 'canplot validate' to check each signal definition"}
	case client.IsTooLarge(err):
		return []string{
			"Split the capture into smaller files",
			"Or restart the server with a larger --max-body-mb",
		}
	default:
		return []string{"Check the server is running with 'canplot scan'"}
	}
}

// printSummary prints the per-signal table and, with --points, each trace
func printSummary(results []*signal.Result, configs []signal.Config) {
	p := ui.NewPrinter(nil)
	summaries := make([]ui.SignalSummary, len(results))
	for i, res := range results {
		summaries[i] = ui.Summarize(res, configs[i])
	}
	p.Newline()
	p.Println(ui.RenderSummaryTable(summaries, p.Width()))

	if showPoints > 0 {
		for i, res := range results {
			p.Newline()
			p.Println(ui.SignalColorStyle(configs[i].Color).Bold(true).Render(res.SignalName))
			p.Println(ui.RenderDataPoints(res, showPoints, p.Width()))
			if len(res.Skipped) > 0 {
				p.Println(ui.RenderSkipped(res, p.Width()))
			}
		}
	}
}

func workersLabel(n int) string {
	if n <= 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

// resolveSignals loads definitions from --signals or --set. The second
// return value describes where they came from.
func resolveSignals(registry *config.Registry) ([]signal.Config, string, error) {
	if signalsPath != "" {
		configs, err := config.LoadSignalFile(signalsPath)
		if err != nil {
			return nil, "", err
		}
		return configs, signalsPath, nil
	}

	set := registry.GetSet(setName)
	if set == nil {
		return nil, "", fmt.Errorf("signal set %q not found (see 'canplot sets list')", setName)
	}
	return set.Signals, "set " + setName, nil
}

// arbidsCmd lists the arbitration ids present in a capture
var arbidsCmd = &cobra.Command{
	Use:   "arbids",
	Short: "List arbitration ids in a message file",
	Long: `List the distinct arbitration ids in a message file, sorted
lexicographically, with their message count and largest payload in bits.`,
	Example: `  canplot arbids -m capture.json`,
	RunE:    runArbIDs,
}

func runArbIDs(cmd *cobra.Command, args []string) error {
	messages, err := ingest.ReadFile(messagesPath)
	if err != nil {
		return err
	}

	ids := signal.UniqueArbIDs(messages)
	if remoteURL != "" {
		remote, err := remoteClient(context.Background())
		if err != nil {
			return err
		}
		if ids, err = remote.ArbIDs(context.Background(), messages); err != nil {
			return err
		}
	}

	p := ui.NewPrinter(nil)
	if len(ids) == 0 {
		p.Println("No messages found.")
		return nil
	}

	p.Println(ui.RenderArbIDTable(ui.ArbIDRows(ids, messages), p.Width()))
	return nil
}

// payloadSizeCmd reports the payload size for one arbitration id
var payloadSizeCmd = &cobra.Command{
	Use:   "payload-size",
	Short: "Print the largest payload size in bits for an arbitration id",
	Long: `Print the largest payload size, in bits, among messages with the given
arbitration id. Messages without a length count as 8 bytes. When no message
matches the default of 64 bits is printed.`,
	Example: `  canplot payload-size -m capture.json --arbid 0x1A0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := ingest.ReadFile(messagesPath)
		if err != nil {
			return err
		}
		if remoteURL != "" {
			remote, err := remoteClient(context.Background())
			if err != nil {
				return err
			}
			bits, err := remote.PayloadSize(context.Background(), messages, arbID)
			if err != nil {
				return err
			}
			fmt.Println(bits)
			return nil
		}
		fmt.Println(signal.MaxPayloadSize(messages, arbID))
		return nil
	},
}

func init() {
	payloadSizeCmd.Flags().StringVar(&arbID, "arbid", "", "Arbitration id (hex, case-insensitive)")
	_ = payloadSizeCmd.MarkFlagRequired("arbid")
}

// validateCmd checks signal definitions against a capture
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check signal definitions against a message file",
	Long: `Check each signal definition for missing or unsupported fields, for an
arbitration id that does not occur in the messages, and for a bit range that
does not fit the payload.

Exits non-zero when any definition is invalid.`,
	Example: `  canplot validate -m capture.json --set engine`,
	RunE:    runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	messages, err := ingest.ReadFile(messagesPath)
	if err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	configs, _, err := resolveSignals(registry)
	if err != nil {
		return err
	}

	var remote *client.Client
	if remoteURL != "" {
		if remote, err = remoteClient(context.Background()); err != nil {
			return err
		}
	}

	p := ui.NewPrinter(nil)
	invalid := 0
	for _, cfg := range configs {
		v := signal.Validate(cfg, messages)
		if remote != nil {
			rv, err := remote.Validate(context.Background(), messages, cfg)
			if err != nil {
				return err
			}
			v = *rv
		}
		name := cfg.NameOrDefault()
		if v.Valid {
			p.Println(ui.StepCompleteStyle.Render("  "+ui.SuccessMarker+" ") + name)
			continue
		}

		invalid++
		p.Println(ui.ErrorTitleStyle.Render("  "+ui.FailureMarker+" ") + name)
		for _, msg := range v.Errors {
			p.Println(ui.ErrorMessageStyle.Render("      " + msg))
		}
	}

	p.Newline()
	if invalid > 0 {
		return fmt.Errorf("%d of %d signal definitions are invalid", invalid, len(configs))
	}
	p.Println(fmt.Sprintf("All %d signal definitions are valid.", len(configs)))
	return nil
}
