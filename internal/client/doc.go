// Package client is a Go client for the canplot HTTP API.
//
// It mirrors the server endpoints one method per route and is used by the
// CLI's --remote mode to run extraction on another machine, typically one
// found with 'canplot scan'.
//
// Transport failures and 502, 503, 504 and 429 responses are retried with
// exponential backoff up to MaxRetries. A 422 response means a signal
// definition was rejected and is reported by IsInvalidConfig.
//
// Example:
//
//	c := client.NewClient(peer.BaseURL())
//	results, err := c.Extract(ctx, messages, configs)
package client
