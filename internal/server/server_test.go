package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/canplot/internal/api"
	"github.com/muurk/canplot/internal/decode"
	canSignal "github.com/muurk/canplot/internal/signal"
)

var testMessages = []canSignal.Message{
	{Timestamp: 0.1, ArbitrationID: "0x100", Payload: "0A14", Length: 2},
	{Timestamp: 0.2, ArbitrationID: "0x200", Payload: "FFFF", Length: 2},
	{Timestamp: 0.3, ArbitrationID: "0x100", Payload: "1E", Length: 1},
	{Timestamp: 0.4, ArbitrationID: "0x100", Payload: "3C50", Length: 2},
}

func testSignals() []canSignal.Config {
	return []canSignal.Config{
		{
			ID:            "a",
			Name:          "Second byte",
			ArbitrationID: "0x100",
			StartBit:      canSignal.IntPtr(8),
			DataType:      decode.Uint8,
			Endianness:    decode.BigEndian,
			Scale:         canSignal.FloatPtr(2),
			Offset:        canSignal.FloatPtr(5),
		},
		{
			ID:            "b",
			ArbitrationID: "0x200",
			StartBit:      canSignal.IntPtr(0),
			DataType:      decode.Int16,
			Endianness:    decode.LittleEndian,
		},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(&Config{Workers: 2})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleExtract(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/extract", api.ExtractRequest{
		Messages: testMessages,
		Signals:  testSignals(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out api.ExtractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Results, 2)

	first := out.Results[0]
	assert.Equal(t, "a", first.SignalID)
	require.Len(t, first.DataPoints, 2)
	assert.Equal(t, 0x14*2+5.0, first.DataPoints[0].PhysicalValue)
	assert.Equal(t, 0x50*2+5.0, first.DataPoints[1].PhysicalValue)
	require.Len(t, first.Skipped, 1)
	assert.Equal(t, 2, first.Skipped[0].Index)
	assert.Equal(t, canSignal.ReasonOutOfRange, first.Skipped[0].Reason)

	second := out.Results[1]
	assert.Equal(t, canSignal.DefaultName, second.SignalName)
	require.Len(t, second.DataPoints, 1)
	assert.Equal(t, -1.0, second.DataPoints[0].RawValue)
}

func TestHandleExtract_Errors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid config",
			body:       `{"messages":[],"signals":[{"id":"x","arbid":"0x1"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "startBit",
		},
		{
			name:       "malformed json",
			body:       `{"messages":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "numeric arbitration id",
			body:       `{"messages":[{"arbitration_id":256}],"signals":[]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/extract", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var out api.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Contains(t, out.Error, tt.wantError)
		})
	}
}

func TestHandleExtract_EmptySignals(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/extract", "application/json", strings.NewReader(`{"messages":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []any{}, out["results"])
}

func TestHandleExtract_BodyTooLarge(t *testing.T) {
	srv, err := New(&Config{MaxBodyBytes: 64})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/extract", api.ExtractRequest{Messages: testMessages})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHandleArbIDs(t *testing.T) {
	_, ts := newTestServer(t)

	messages := append([]canSignal.Message{{ArbitrationID: "0x10"}, {ArbitrationID: "0x2"}}, testMessages...)
	resp := postJSON(t, ts.URL+"/api/arbids", api.ArbIDsRequest{Messages: messages})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ArbIDsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"0x10", "0x100", "0x2", "0x200"}, out.ArbIDs)
}

func TestHandlePayloadSize(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		arbid      string
		wantStatus int
		wantBits   uint32
	}{
		{arbid: "0x100", wantStatus: http.StatusOK, wantBits: 16},
		{arbid: "0x999", wantStatus: http.StatusOK, wantBits: 64},
		{arbid: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp := postJSON(t, ts.URL+"/api/payload-size", api.PayloadSizeRequest{Messages: testMessages, ArbID: tt.arbid})
		require.Equal(t, tt.wantStatus, resp.StatusCode, "arbid %q", tt.arbid)
		if tt.wantStatus != http.StatusOK {
			continue
		}

		var out api.PayloadSizeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, tt.wantBits, out.Bits)
		assert.Equal(t, tt.arbid, out.ArbID)
	}
}

func TestHandleValidate(t *testing.T) {
	_, ts := newTestServer(t)

	cfg := testSignals()[0]
	cfg.StartBit = canSignal.IntPtr(12)

	resp := postJSON(t, ts.URL+"/api/validate", api.ValidateRequest{Messages: testMessages, Signal: cfg})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out canSignal.Validation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Valid)
	assert.Equal(t, []string{"Bit range (12 + 8) exceeds payload size (16 bits)"}, out.Errors)
}

func TestHandleTypes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/types")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.TypesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	require.Len(t, out.DataTypes, len(decode.DataTypes))
	assert.Equal(t, decode.Int8, out.DataTypes[0].Value)
	assert.Equal(t, 8, out.DataTypes[0].Bits)
	assert.True(t, out.DataTypes[0].Signed)

	require.Len(t, out.Endianness, 2)
	assert.Equal(t, "Big Endian (MSB first)", out.Endianness[0].Label)
	assert.Len(t, out.Colors, 10)
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Post(ts.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestServeAndShutdown(t *testing.T) {
	srv, err := New(&Config{})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Serve(listener) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestNew_TLSRequiresBothFiles(t *testing.T) {
	_, err := New(&Config{CertPath: "cert.pem"})
	assert.Error(t, err)
}
