package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/canplot/internal/api"
	"github.com/muurk/canplot/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// wsConn serializes writes, which gorilla/websocket requires
type wsConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) send(msg api.StreamMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	remoteAddr := r.RemoteAddr
	s.trackConn(ws, remoteAddr)
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	defer func() {
		s.untrackConn(ws)
		_ = ws.Close()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	s.serveStream(&wsConn{Conn: ws}, remoteAddr)
}

// serveStream answers extract requests until the peer goes away
func (s *Server) serveStream(conn *wsConn, remoteAddr string) {
	conn.SetReadLimit(s.config.MaxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed or error reading request",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var req api.ExtractRequest
		if decodeErr := json.Unmarshal(data, &req); decodeErr != nil {
			// Unparseable requests get an error frame, same as a rejected batch
			logging.Debug("Invalid WebSocket request",
				zap.String("remote_addr", remoteAddr),
				zap.Error(decodeErr),
			)
			err = conn.send(api.StreamMessage{Type: api.StreamError, Error: "invalid request: " + decodeErr.Error()})
		} else {
			err = s.streamResults(conn, req)
		}
		if err != nil {
			logging.Warn("Failed to write to WebSocket",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

func (s *Server) streamResults(conn *wsConn, req api.ExtractRequest) error {
	results, err := s.extractor.ExtractMultiple(req.Messages, req.Signals)
	if err != nil {
		return conn.send(api.StreamMessage{Type: api.StreamError, Error: err.Error()})
	}

	for i, res := range results {
		if err := conn.send(api.StreamMessage{Type: api.StreamResult, Index: i, Result: res}); err != nil {
			return err
		}
	}
	return conn.send(api.StreamMessage{Type: api.StreamDone, Count: len(results)})
}
