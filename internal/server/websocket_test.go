package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/canplot/internal/api"
	canSignal "github.com/muurk/canplot/internal/signal"
)

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/extract"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocketStream(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteJSON(api.ExtractRequest{Messages: testMessages, Signals: testSignals()}))

	var frames []api.StreamMessage
	for {
		var msg api.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		frames = append(frames, msg)
		if msg.Type != api.StreamResult {
			break
		}
	}

	require.Len(t, frames, 3)
	assert.Equal(t, api.StreamResult, frames[0].Type)
	assert.Equal(t, 0, frames[0].Index)
	assert.Equal(t, "a", frames[0].Result.SignalID)
	assert.Equal(t, 1, frames[1].Index)
	assert.Equal(t, "b", frames[1].Result.SignalID)
	assert.Equal(t, api.StreamDone, frames[2].Type)
	assert.Equal(t, 2, frames[2].Count)

	assert.Equal(t, 1, srv.GetActiveConnections())
}

func TestWebSocketStream_ErrorKeepsConnection(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialStream(t, ts)

	bad := api.ExtractRequest{Signals: []canSignal.Config{{ID: "broken"}}}
	require.NoError(t, conn.WriteJSON(bad))

	var msg api.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, api.StreamError, msg.Type)
	assert.Contains(t, msg.Error, "broken")

	// The same connection still serves the next request
	require.NoError(t, conn.WriteJSON(api.ExtractRequest{Messages: testMessages, Signals: testSignals()[:1]}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, api.StreamResult, msg.Type)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, api.StreamDone, msg.Type)
}

func TestWebSocketStream_MalformedRequestKeepsConnection(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialStream(t, ts)

	for _, raw := range []string{`{"messages": [`, `{"signals": "rpm"}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))

		var msg api.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, api.StreamError, msg.Type, raw)
		assert.Contains(t, msg.Error, "invalid request", raw)
	}

	require.NoError(t, conn.WriteJSON(api.ExtractRequest{Messages: testMessages, Signals: testSignals()}))
	var msg api.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, api.StreamResult, msg.Type)
}

func TestWebSocket_RejectsPlainHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/ws/extract")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}
