package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lixenwraith/spritestage/core"
	"github.com/lixenwraith/spritestage/engine"
)

// HTTPService runs the control surface as a hub service
type HTTPService struct {
	addr    string
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewService creates the service for e listening on addr
func NewService(addr string, e *engine.Engine, logger *slog.Logger) *HTTPService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPService{
		addr:    addr,
		handler: NewHandler(e, logger),
		logger:  logger,
	}
}

// Name implements service.Service
func (s *HTTPService) Name() string { return "http" }

// Dependencies implements service.Service
func (s *HTTPService) Dependencies() []string { return []string{"engine"} }

// Start binds the listener synchronously so address errors surface here
func (s *HTTPService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.done = make(chan struct{})

	srv, done := s.srv, s.done
	core.Go(func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	})
	s.logger.Info("http listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, useful with port 0
func (s *HTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests
func (s *HTTPService) Stop() error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		// Event streams hold connections open until their request context ends
		err = srv.Close()
	}
	<-done
	return err
}
