// Package api holds the JSON wire types shared by the canplot HTTP server
// and its client.
//
// Every request body and response of the REST endpoints, and every frame of
// the /ws/extract stream, is declared here so that internal/server and
// internal/client agree on field names without depending on each other.
package api
