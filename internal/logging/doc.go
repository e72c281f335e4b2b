// Package logging provides structured logging for canplot.
//
// This package wraps a global zap logger with convenience functions for the
// events the extraction engine and the HTTP API care about.
//
// # Log Levels
//
//   - Debug: per-message detail (skipped records and why)
//   - Info: requests served, server lifecycle, mDNS advertisement
//   - Warn: signals that produced skipped records
//   - Error: startup failures, encoding errors
//
// # Configuration
//
// Logging is silent unless a level is given explicitly or through the
// CANPLOT_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so that command output written to
// stdout (JSON, CSV, CBOR) stays machine readable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
