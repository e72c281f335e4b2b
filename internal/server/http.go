package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/canplot/internal/api"
	"github.com/muurk/canplot/internal/config"
	"github.com/muurk/canplot/internal/decode"
	"github.com/muurk/canplot/internal/logging"
	canSignal "github.com/muurk/canplot/internal/signal"
	"github.com/muurk/canplot/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", BuildInfo: version.Info()})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	resp := api.TypesResponse{
		Colors: config.SignalColors,
	}
	for _, d := range decode.DataTypes {
		info, _ := d.Info()
		resp.DataTypes = append(resp.DataTypes, api.TypeOption{Value: d, TypeInfo: info})
	}
	for _, e := range decode.Endiannesses {
		resp.Endianness = append(resp.Endianness, api.EndiannessOption{Value: e, Label: e.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req api.ExtractRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	results, err := s.extractor.ExtractMultiple(req.Messages, req.Signals)
	if err != nil {
		writeExtractError(w, err)
		return
	}
	if results == nil {
		results = []*canSignal.Result{}
	}

	writeJSON(w, http.StatusOK, api.ExtractResponse{Results: results})
}

func (s *Server) handleArbIDs(w http.ResponseWriter, r *http.Request) {
	var req api.ArbIDsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, api.ArbIDsResponse{ArbIDs: canSignal.UniqueArbIDs(req.Messages)})
}

func (s *Server) handlePayloadSize(w http.ResponseWriter, r *http.Request) {
	var req api.PayloadSizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.ArbID == "" {
		writeError(w, http.StatusBadRequest, "arbid is required")
		return
	}
	writeJSON(w, http.StatusOK, api.PayloadSizeResponse{
		ArbID: req.ArbID,
		Bits:  canSignal.MaxPayloadSize(req.Messages, req.ArbID),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req api.ValidateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, canSignal.Validate(req.Signal, req.Messages))
}

// decodeBody reads a bounded JSON body into v. It writes the error response
// itself and reports whether decoding succeeded.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeExtractError(w http.ResponseWriter, err error) {
	if canSignal.IsInvalidConfig(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logging.Error("Extraction failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to write response", zap.Error(err))
	}
}

// statusRecorder captures the status code and size written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Hijack hands the connection to the WebSocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, rec.bytes)
	})
}
