package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// DefaultPollInterval is used when Config.PollInterval is not set
const DefaultPollInterval = 20 * time.Second

// shutdownTimeout bounds how long Run waits for connections to drain
const shutdownTimeout = 10 * time.Second

// Poller fetches one set of observations from a gateway
type Poller interface {
	LiveData(ctx context.Context) (protocol.Observations, error)
}

// Publisher forwards observations, e.g. to MQTT
type Publisher interface {
	Publish(ctx context.Context, obs protocol.Observations) error
}

// Archiver stores observations
type Archiver interface {
	Save(ctx context.Context, at time.Time, obs protocol.Observations) error
}

// Config holds the server configuration
type Config struct {
	ListenAddr   string
	PollInterval time.Duration
	CertPath     string // TLS certificate, optional
	KeyPath      string // TLS key, optional

	Poller    Poller
	Publisher Publisher         // optional
	Archive   Archiver          // optional
	Sensors   *sensors.Registry // optional, served on /api/sensors
	Now       func() time.Time  // optional clock
}

// Snapshot is the result of one successful poll
type Snapshot struct {
	Time         time.Time             `json:"time"`
	Observations protocol.Observations `json:"observations"`
}

// Server polls a gateway and relays its observations over HTTP and websocket
type Server struct {
	config *Config
	hub    *hub
	http   *http.Server

	mu       sync.RWMutex
	latest   *Snapshot
	lastPoll time.Time
	lastErr  error

	listenMu sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config.Poller == nil {
		return nil, errors.New("server requires a poller")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if (config.CertPath == "") != (config.KeyPath == "") {
		return nil, errors.New("both certificate and key must be provided together, or neither")
	}

	s := &Server{
		config: config,
		hub:    newHub(),
	}
	s.http = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start runs the server until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP and polls the gateway until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	s.listenMu.Lock()
	s.listener = listener
	s.listenMu.Unlock()

	logging.Info("Starting GW1000 relay server",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Bool("tls", s.config.CertPath != ""),
		zap.Bool("mqtt", s.config.Publisher != nil),
		zap.Bool("archive", s.config.Archive != nil),
	)

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.CertPath != "" {
			err = s.http.ServeTLS(listener, s.config.CertPath, s.config.KeyPath)
		} else {
			err = s.http.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollLoop(pollCtx)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping server...")
	case serveErr = <-errChan:
		logging.Error("HTTP server failed", zap.Error(serveErr))
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return serveErr
}

// Addr returns the address the server is listening on, or nil before Run
func (s *Server) Addr() net.Addr {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("Poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches live data once, records the snapshot and fans it out to
// websocket clients, the publisher and the archive. Publisher and archive
// failures are logged and do not fail the poll.
func (s *Server) Poll(ctx context.Context) error {
	at := s.config.Now()
	obs, err := s.config.Poller.LiveData(ctx)

	s.mu.Lock()
	s.lastPoll = at
	s.lastErr = err
	if err == nil {
		s.latest = &Snapshot{Time: at, Observations: obs}
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	logging.LogObservations("gateway", obs)

	snap := Snapshot{Time: at, Observations: obs}
	if err := s.hub.broadcastJSON(snap); err != nil {
		logging.Error("Failed to encode snapshot", zap.Error(err))
	}

	if s.config.Publisher != nil {
		if err := s.config.Publisher.Publish(ctx, obs); err != nil {
			logging.Warn("Failed to publish observations", zap.Error(err))
		}
	}
	if s.config.Archive != nil {
		if err := s.config.Archive.Save(ctx, at, obs); err != nil {
			logging.Warn("Failed to archive observations", zap.Error(err))
		}
	}
	return nil
}

// Latest returns the most recent snapshot, or nil before the first
// successful poll
func (s *Server) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.hub.closeAll()
	err := s.http.Shutdown(ctx)

	// Wait for the poll loop with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Server stopped")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// GetActiveConnections returns the number of connected websocket clients
func (s *Server) GetActiveConnections() int {
	return s.hub.count()
}
