package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/muurk/canplot/internal/signal"
)

// ExtractRunnerConfig holds configuration for a batch extraction run
type ExtractRunnerConfig struct {
	Title   string            // Command title (e.g., "Signal Extraction")
	Command string            // Full command (e.g., "canplot extract")
	Params  map[string]string // Parameters to display in header
	Workers int               // Extraction goroutines; 0 uses GOMAXPROCS
	Quiet   bool              // Suppress header and per-signal lines
	Output  io.Writer         // Output writer (default: os.Stdout)
}

// ExtractRunner drives the header, progress and result flow around
// signal.Extractor.ExtractMultiple.
type ExtractRunner struct {
	config ExtractRunnerConfig
	output io.Writer
	width  int

	mu       sync.Mutex
	progress *Progress
}

// NewExtractRunner creates a new runner
func NewExtractRunner(config ExtractRunnerConfig) *ExtractRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &ExtractRunner{
		config: config,
		output: config.Output,
		width:  GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (r *ExtractRunner) SetWidth(width int) *ExtractRunner {
	r.width = width
	return r
}

// Run extracts every config, printing one line per signal as it finishes.
// The returned results are in config order.
func (r *ExtractRunner) Run(messages []signal.Message, configs []signal.Config) ([]*signal.Result, error) {
	start := time.Now()

	names := make([]string, len(configs))
	for i, cfg := range configs {
		names[i] = cfg.NameOrDefault()
	}
	r.progress = NewProgress("", names).SetWidth(r.width)
	for i, cfg := range configs {
		r.progress.Steps[i].Color = cfg.Color
	}

	if !r.config.Quiet {
		header := NewHeader(r.config.Title, r.config.Command, r.config.Params).SetWidth(r.width)
		r.println(header.Render())
		r.println("")
	}

	extractor := &signal.Extractor{
		Workers:  r.config.Workers,
		OnResult: r.onResult,
	}
	results, err := extractor.ExtractMultiple(messages, configs)
	duration := time.Since(start).Round(time.Millisecond)

	if !r.config.Quiet {
		r.println("")
		r.println(r.progress.RenderBar())
		r.println("")
	}

	if err != nil {
		res := NewFailureResult(r.config.Title+" failed", err, []string{
			"Run 'canplot validate' to check each signal definition",
			"Every signal needs arbid, start_bit, data_type and endianness",
		})
		r.println(res.SetWidth(r.width).Render())
		return nil, err
	}

	r.println(r.summary(results, configs, duration).SetWidth(r.width).Render())
	return results, nil
}

// onResult is called from extractor worker goroutines
func (r *ExtractRunner) onResult(index int, res *signal.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, message := StepComplete, ""
	switch {
	case err != nil:
		status, message = StepFailed, err.Error()
	case len(res.Skipped) > 0:
		status = StepWarning
		message = fmt.Sprintf("%d points, %d skipped", len(res.DataPoints), len(res.Skipped))
	default:
		message = fmt.Sprintf("%d points", len(res.DataPoints))
	}
	r.progress.UpdateStep(index+1, status, message)

	if !r.config.Quiet {
		r.println(r.progress.RenderStep(r.progress.Steps[index]))
	}
}

func (r *ExtractRunner) summary(results []*signal.Result, configs []signal.Config, duration time.Duration) *Result {
	points, skipped := 0, 0
	for _, res := range results {
		points += len(res.DataPoints)
		skipped += len(res.Skipped)
	}

	details := map[string]string{
		"Signals":     strconv.Itoa(len(configs)),
		"Data points": strconv.Itoa(points),
		"Duration":    duration.String(),
	}

	title := fmt.Sprintf("Extracted %d signals", len(configs))
	if skipped > 0 {
		details["Skipped"] = strconv.Itoa(skipped)
		return NewWarningResult(title, details)
	}
	return NewSuccessResult(title, details)
}

func (r *ExtractRunner) println(s string) {
	_, _ = fmt.Fprintln(r.output, s)
}
