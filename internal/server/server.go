package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MINAqwq/LibWebli/internal/conn"
	"github.com/MINAqwq/LibWebli/internal/logging"
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
	"github.com/MINAqwq/LibWebli/internal/storage"
	"github.com/MINAqwq/LibWebli/internal/websocket"
)

// DefaultReadBufferSize is the size of the single read a request must fit in.
const DefaultReadBufferSize = 2048

// shutdownTimeout bounds the drain when Serve stops because its context ended.
const shutdownTimeout = 10 * time.Second

// closeFrameGrace bounds how long Shutdown waits for WebSocket Close frames.
const closeFrameGrace = time.Second

// acceptBackoff is the pause after a failed Accept.
const acceptBackoff = 50 * time.Millisecond

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("server closed")

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // PEM certificate, ignored when WithTLSConfig is used
	KeyPath  string // PEM private key, ignored when WithTLSConfig is used

	// ReadBufferSize is the size of the one read that carries a request.
	ReadBufferSize int
	// MaxConns bounds concurrent connections. Zero means unbounded.
	MaxConns int
	// ReadTimeout and WriteTimeout apply per I/O operation. Zero means none.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// StorageRoot is the directory FromStorage paths are resolved against.
	StorageRoot string
	// LogRequests enables one access line per answered request.
	LogRequests bool
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Option customizes a Server.
type Option func(*Server)

// WithTLSConfig uses cfg instead of loading CertPath and KeyPath.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// WithStorage replaces the loader used for FromStorage outcomes.
func WithStorage(l storage.Loader) Option {
	return func(s *Server) {
		s.storage = l
	}
}

// WithDefault overrides the response used for a NotFound, BadRequest or
// Unauthorized outcome.
func WithDefault(kind router.Kind, resp *message.Response) Option {
	return func(s *Server) {
		s.defaults.Set(kind, resp)
	}
}

// WithMaxMessageSize limits WebSocket frames and reassembled messages.
func WithMaxMessageSize(n uint64) Option {
	return func(s *Server) {
		s.maxMessageSize = n
	}
}

// Server accepts TLS connections, answers one request per connection and
// hands upgraded connections to the WebSocket engine.
type Server struct {
	config         *Config
	router         *router.Router
	tlsConfig      *tls.Config
	defaults       Defaults
	storage        storage.Loader
	maxMessageSize uint64

	sem      chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup

	mu          sync.Mutex
	listener    net.Listener
	activeConns map[string]net.Conn
	sockets     map[*websocket.Conn]struct{}
}

// New creates a server that dispatches through r. TLS material is loaded
// here so a bad certificate fails before anything listens.
func New(config *Config, r *router.Router, opts ...Option) (*Server, error) {
	if config == nil {
		return nil, errors.New("server config is required")
	}
	if r == nil {
		return nil, errors.New("router is required")
	}

	cfg := *config
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultReadBufferSize
	}

	s := &Server{
		config:         &cfg,
		router:         r,
		defaults:       DefaultResponses(),
		maxMessageSize: websocket.DefaultMaxPayload,
		quit:           make(chan struct{}),
		activeConns:    make(map[string]net.Conn),
		sockets:        make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.tlsConfig == nil {
		tlsConfig, err := NewTLSConfig(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		s.tlsConfig = tlsConfig
	}
	if s.storage == nil {
		s.storage = storage.Dir{Root: cfg.StorageRoot}
	}
	if cfg.MaxConns > 0 {
		s.sem = make(chan struct{}, cfg.MaxConns)
	}

	return s, nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. When ctx ends the server shuts down and
// Serve returns once the workers are done. After a direct call to Shutdown
// it returns ErrServerClosed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	select {
	case <-s.quit:
		_ = ln.Close()
		return ErrServerClosed
	default:
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logging.Info("Server listening for connections",
		zap.String("addr", ln.Addr().String()),
		zap.Any("tls_info", TLSInfo(s.tlsConfig)),
		zap.Int("max_conns", s.config.MaxConns),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.acceptConnections(ln)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		<-errChan
		return err
	case err := <-errChan:
		return err
	}
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// acceptConnections accepts and handles incoming connections
func (s *Server) acceptConnections(ln net.Listener) error {
	for {
		if !s.acquire() {
			return ErrServerClosed
		}

		raw, err := ln.Accept()
		if err != nil {
			s.release()
			if errors.Is(err, net.ErrClosed) {
				select {
				case <-s.quit:
					return ErrServerClosed
				default:
					return nil
				}
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			time.Sleep(acceptBackoff)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			s.handleConnection(raw)
		}()
	}
}

// acquire takes a connection slot. It returns false once shutdown starts.
func (s *Server) acquire() bool {
	if s.sem == nil {
		select {
		case <-s.quit:
			return false
		default:
			return true
		}
	}
	select {
	case s.sem <- struct{}{}:
		return true
	case <-s.quit:
		return false
	}
}

func (s *Server) release() {
	if s.sem != nil {
		<-s.sem
	}
}

// handleConnection runs one connection from handshake to close.
func (s *Server) handleConnection(raw net.Conn) {
	key := raw.RemoteAddr().String()
	if !s.track(key, raw) {
		_ = raw.Close()
		return
	}
	defer s.untrack(key)

	start := time.Now()
	if s.config.ReadTimeout > 0 {
		_ = raw.SetDeadline(start.Add(s.config.ReadTimeout))
	}

	c, err := conn.Accept(raw, s.tlsConfig)
	if err != nil {
		logging.Warn("TLS handshake failed",
			zap.String("remote_addr", key),
			zap.Error(err),
		)
		return
	}
	_ = raw.SetDeadline(time.Time{})
	c.SetTimeouts(s.config.ReadTimeout, s.config.WriteTimeout)

	logging.LogConnection(c.ID(), c.RemoteAddr(), "connection_accepted")
	defer func() {
		_ = c.Close()
		logging.LogConnection(c.ID(), c.RemoteAddr(), "connection_closed")
	}()

	s.serveRequest(c, start)
}

// track records an active socket. It refuses new sockets once shutdown
// has started.
func (s *Server) track(key string, raw net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.quit:
		return false
	default:
	}
	s.activeConns[key] = raw
	return true
}

func (s *Server) untrack(key string) {
	s.mu.Lock()
	delete(s.activeConns, key)
	s.mu.Unlock()
}

// Shutdown stops accepting, closes WebSocket sessions and active
// connections, then waits for the workers or ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.quitOnce.Do(func() {
		close(s.quit)
	})

	s.mu.Lock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}
	sockets := make([]*websocket.Conn, 0, len(s.sockets))
	for ws := range s.sockets {
		sockets = append(sockets, ws)
	}
	s.mu.Unlock()

	// Close frames get a short head start; a peer that stopped reading
	// must not hold up the socket teardown below.
	sent := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, ws := range sockets {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = ws.Close()
			}()
		}
		wg.Wait()
		close(sent)
	}()
	select {
	case <-sent:
	case <-time.After(closeFrameGrace):
		logging.Warn("WebSocket close frames still pending, closing sockets")
	case <-ctx.Done():
	}

	s.mu.Lock()
	for addr, raw := range s.activeConns {
		logging.Debug("Closing active connection", zap.String("remote_addr", addr))
		_ = raw.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	defer logging.Sync()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
		return nil
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		return ctx.Err()
	}
}

// ActiveConnections returns the number of open connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
