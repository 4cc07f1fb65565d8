package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/argentmirror/argent-core/internal/assistant"
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/config"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Registry  *home.Registry
	Assistant *assistant.Service
	Version   string
}

// Server is the HTTP API server for Argent Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	registry  *home.Registry
	assistant *assistant.Service
	version   string

	server  *http.Server
	hub     *Hub
	tickets *ticketStore
	cancel  context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("home registry is required")
	}
	if deps.Assistant == nil {
		return nil, fmt.Errorf("assistant service is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		registry:  deps.Registry,
		assistant: deps.Assistant,
		version:   deps.Version,
		tickets:   newTicketStore(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, subscribes the hub to registry updates
// for real-time broadcast, and launches the HTTP listener in a
// background goroutine. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Relay every registry update to subscribed kiosk clients.
	unsubscribe := s.registry.Subscribe(func(u home.DeviceUpdate) {
		s.hub.Broadcast(channelDeviceUpdated, u)
	})
	go func() {
		<-srvCtx.Done()
		unsubscribe()
	}()

	go s.tickets.cleanLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
