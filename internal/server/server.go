// Package server exposes scan runs over HTTP. Clients start and cancel a
// run through a websocket and receive every run event as JSON while it
// happens; a small JSON API lists the configured roots.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/logging"
	"github.com/conneroisu/matchscan/internal/scanner"
)

// JobSource builds the job for a new run. It is called for every start so
// edits to the scan document are picked up without a restart.
type JobSource func() (scanner.Job, error)

// Server serves run progress to websocket clients. Only one run is active
// at a time across all connections.
type Server struct {
	config config.ServerConfig
	jobs   JobSource
	runner *scanner.Runner
	logger logging.Logger

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once

	runMutex  sync.Mutex
	cancelRun context.CancelFunc
	runDone   chan struct{}
}

// New creates a server that runs jobs from jobs on runner.
func New(cfg config.ServerConfig, jobs JobSource, runner *scanner.Runner, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if runner == nil {
		runner = scanner.NewRunner(scanner.WithLogger(logger))
	}
	return &Server{
		config: cfg,
		jobs:   jobs,
		runner: runner,
		logger: logger.WithComponent("server"),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/roots", s.handleRoots)
	mux.HandleFunc("/api/state", s.handleState)
	return mux
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until Shutdown or until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening", "address", listener.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown cancels any active run and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.cancel()
		s.waitRun()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// claimRun reserves the single run slot. It returns false when a run is
// already active.
func (s *Server) claimRun(cancel context.CancelFunc) (chan struct{}, bool) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.cancelRun != nil {
		return nil, false
	}
	s.cancelRun = cancel
	s.runDone = make(chan struct{})
	return s.runDone, true
}

func (s *Server) releaseRun(done chan struct{}) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.runDone == done {
		s.cancelRun = nil
		s.runDone = nil
	}
	close(done)
}

// cancel requests cancellation of the active run, if any. It reports
// whether a run was active.
func (s *Server) cancel() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	if s.cancelRun == nil {
		return false
	}
	s.cancelRun()
	return true
}

func (s *Server) waitRun() {
	s.runMutex.Lock()
	done := s.runDone
	s.runMutex.Unlock()

	if done != nil {
		<-done
	}
}
