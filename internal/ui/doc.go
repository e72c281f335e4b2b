// Package ui provides terminal UI components for the canplot CLI.
//
// Components are rendered with Lipgloss and follow a "run once and exit"
// pattern: they print polished output but never wait for input, except for
// Confirm.
//
// # Components
//
//   - Header: command banner with title, command line and parameters
//   - Progress: progress bar with one step line per signal
//   - Result: success, warning or failure box with details and hints
//   - Tables: signal summaries, data points, skips and arbitration ids
//
// ExtractRunner ties these together around a parallel extraction:
//
//	runner := ui.NewExtractRunner(ui.ExtractRunnerConfig{
//	    Title:   "Signal Extraction",
//	    Command: "canplot extract",
//	    Params:  map[string]string{"Messages": path},
//	    Workers: workers,
//	})
//	results, err := runner.Run(messages, configs)
//
// Step lines are printed as each signal finishes, so their order follows
// completion rather than config order. The results themselves are always in
// config order.
//
// # Logging Integration
//
// Logging is controlled via the CANPLOT_LOG_LEVEL environment variable. When
// unset, zap logging is silent so that the curated UI output is displayed
// cleanly.
package ui
