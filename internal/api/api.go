package api

import (
	"github.com/muurk/canplot/internal/decode"
	canSignal "github.com/muurk/canplot/internal/signal"
	"github.com/muurk/canplot/internal/version"
)

// Endpoint paths
const (
	PathHealth      = "/healthz"
	PathTypes       = "/api/types"
	PathExtract     = "/api/extract"
	PathArbIDs      = "/api/arbids"
	PathPayloadSize = "/api/payload-size"
	PathValidate    = "/api/validate"
	PathStream      = "/ws/extract"
)

// ExtractRequest is the body of POST /api/extract and of each WebSocket request
type ExtractRequest struct {
	Messages []canSignal.Message `json:"messages"`
	Signals  []canSignal.Config  `json:"signals"`
}

// ExtractResponse is returned by POST /api/extract
type ExtractResponse struct {
	Results []*canSignal.Result `json:"results"`
}

// ArbIDsRequest is the body of POST /api/arbids
type ArbIDsRequest struct {
	Messages []canSignal.Message `json:"messages"`
}

// ArbIDsResponse is returned by POST /api/arbids
type ArbIDsResponse struct {
	ArbIDs []string `json:"arbids"`
}

// PayloadSizeRequest is the body of POST /api/payload-size
type PayloadSizeRequest struct {
	Messages []canSignal.Message `json:"messages"`
	ArbID    string              `json:"arbid"`
}

// PayloadSizeResponse is returned by POST /api/payload-size
type PayloadSizeResponse struct {
	ArbID string `json:"arbid"`
	Bits  uint32 `json:"bits"`
}

// ValidateRequest is the body of POST /api/validate. The response is a
// signal.Validation.
type ValidateRequest struct {
	Messages []canSignal.Message `json:"messages"`
	Signal   canSignal.Config    `json:"signal"`
}

// TypeOption describes one selectable data type
type TypeOption struct {
	Value decode.DataType `json:"value"`
	decode.TypeInfo
}

// EndiannessOption describes one selectable byte order
type EndiannessOption struct {
	Value decode.Endianness `json:"value"`
	Label string            `json:"label"`
}

// TypesResponse is returned by GET /api/types
type TypesResponse struct {
	DataTypes  []TypeOption       `json:"dataTypes"`
	Endianness []EndiannessOption `json:"endianness"`
	Colors     []string           `json:"colors"`
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	version.BuildInfo
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stream message types sent on /ws/extract
const (
	StreamResult = "result"
	StreamDone   = "done"
	StreamError  = "error"
)

// StreamMessage is one frame sent to a WebSocket client.
// A request produces one "result" frame per signal, in request order,
// followed by a "done" frame; or a single "error" frame.
type StreamMessage struct {
	Type   string            `json:"type"`
	Index  int               `json:"index"`
	Result *canSignal.Result `json:"result,omitempty"`
	Count  int               `json:"count,omitempty"`
	Error  string            `json:"error,omitempty"`
}
