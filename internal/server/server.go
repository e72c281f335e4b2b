package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/canplot/internal/api"
	"github.com/muurk/canplot/internal/discovery"
	"github.com/muurk/canplot/internal/logging"
	canSignal "github.com/muurk/canplot/internal/signal"
	"github.com/muurk/canplot/internal/version"
)

// DefaultMaxBodyBytes bounds the size of a request body
const DefaultMaxBodyBytes = 64 << 20

// Config holds the server configuration
type Config struct {
	Host         string
	Port         int
	CertPath     string // Serve TLS when both CertPath and KeyPath are set
	KeyPath      string
	LogLevel     string
	Workers      int   // Goroutines per batch extraction, 0 = GOMAXPROCS
	MaxBodyBytes int64 // 0 = DefaultMaxBodyBytes
	Advertise    bool  // Announce the API over mDNS
	InstanceName string
}

// Server is the canplot HTTP and WebSocket API
type Server struct {
	config     *Config
	tlsConfig  *tls.Config
	extractor  *canSignal.Extractor
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener
	advert     *discovery.Advertisement

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[*websocket.Conn]string
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		config:      config,
		tlsConfig:   tlsConfig,
		extractor:   &canSignal.Extractor{Workers: config.Workers},
		activeConns: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The web client is served from a different origin during development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.PathHealth, s.handleHealth)
	mux.HandleFunc("GET "+api.PathTypes, s.handleTypes)
	mux.HandleFunc("POST "+api.PathExtract, s.handleExtract)
	mux.HandleFunc("POST "+api.PathArbIDs, s.handleArbIDs)
	mux.HandleFunc("POST "+api.PathPayloadSize, s.handlePayloadSize)
	mux.HandleFunc("POST "+api.PathValidate, s.handleValidate)
	mux.HandleFunc("GET "+api.PathStream, s.handleWebSocket)
	return logRequests(mux)
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logging.Info("Starting canplot API server",
		zap.String("addr", listener.Addr().String()),
		zap.Any("tls", GetTLSInfo(s.tlsConfig)),
		zap.String("log_level", s.config.LogLevel),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on listener until Shutdown is called
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		txt := []string{"version=" + version.Version, "path=/api"}
		if s.tlsConfig != nil {
			txt = append(txt, "tls=true")
		}
		advert, err := discovery.Advertise(s.config.InstanceName, port, txt)
		if err != nil {
			logging.Warn("mDNS advertisement failed, continuing without it", zap.Error(err))
		} else {
			s.mu.Lock()
			s.advert = advert
			s.mu.Unlock()
		}
	}

	var err error
	if s.tlsConfig != nil {
		err = s.httpServer.Serve(tls.NewListener(listener, s.tlsConfig))
	} else {
		err = s.httpServer.Serve(listener)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the listening address once Serve has been called
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	if s.advert != nil {
		s.advert.Shutdown()
		s.advert = nil
	}
	s.mu.Unlock()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for conn, addr := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	return err
}

// GetActiveConnections returns the number of open WebSocket connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) trackConn(conn *websocket.Conn, remoteAddr string) {
	s.mu.Lock()
	s.activeConns[conn] = remoteAddr
	s.mu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.activeConns, conn)
	s.mu.Unlock()
}
