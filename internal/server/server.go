package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/config"
	"github.com/jackzampolin/docuscribe/internal/docstore"
	"github.com/jackzampolin/docuscribe/internal/home"
	"github.com/jackzampolin/docuscribe/internal/metrics"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
	"github.com/jackzampolin/docuscribe/internal/server/endpoints"
	"github.com/jackzampolin/docuscribe/internal/svcctx"
)

// Server is the docuscribe HTTP server. It opens the document store on
// Start and serves the retrieval API until its context is cancelled.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	cfg        Config
	configMgr  *config.Manager
	logger     *slog.Logger
	metrics    *metrics.Recorder

	// services is swapped on config reload; handlers read it per request.
	services atomic.Pointer[svcctx.Services]

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	store    docstore.Store
	listener net.Listener

	ready     chan struct{}
	readyOnce sync.Once
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 9002, "0" picks a free port)
	Port string
	// StoreOptions selects the store opened on Start when Store is nil.
	StoreOptions docstore.Options
	// Store is an already opened store, mainly for tests.
	Store docstore.Store
	// Watch reloads the store on changes when it supports watching.
	Watch bool
	// Limits bounds single-range fetches; zero values use the defaults.
	Limits retrieval.Limits
	// Listing bounds document listings; zero values use the defaults.
	Listing config.ListingConfig
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the docuscribe home directory
	Home *home.Dir
	// Metrics receives request and retrieval metrics (default: a new recorder)
	Metrics *metrics.Recorder
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "9002"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRecorder()
	}
	if cfg.Listing.MaxLimit <= 0 {
		cfg.Listing = config.DefaultConfig().Listing
	}
	if cfg.Store == nil && cfg.StoreOptions.Type == docstore.TypeFile && cfg.StoreOptions.Path == "" {
		return nil, errors.New("file store requires a path")
	}

	s := &Server{
		cfg:       cfg,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		ready:     make(chan struct{}),
	}

	storeType := cfg.StoreOptions.Type
	if storeType == "" && cfg.Store != nil {
		storeType = "custom"
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{StoreType: storeType}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)
	s.handler = s.withServices(s.logRequests(mux))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start opens the document store and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	store := s.cfg.Store
	if store == nil {
		s.logger.Info("opening document store", "type", s.cfg.StoreOptions.Type)
		opened, err := docstore.Open(ctx, s.cfg.StoreOptions, s.logger)
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to open document store: %w", err)
		}
		store = opened
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	s.services.Store(s.buildServices(store, s.cfg.Limits, s.cfg.Listing))

	if s.configMgr != nil {
		s.configMgr.OnChange(func(c *config.Config) {
			s.services.Store(s.buildServices(store, limitsFrom(c), c.Listing))
			s.logger.Info("retrieval limits reloaded from config",
				"default_max_length", c.Retrieval.DefaultMaxLength,
				"max_length_cap", c.Retrieval.MaxLengthCap)
		})
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if w, ok := store.(docstore.Watcher); ok && s.cfg.Watch {
		go func() {
			if err := w.Watch(watchCtx, docstore.DefaultDebounce); err != nil {
				s.logger.Error("document watcher stopped", "error", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.readyOnce.Do(func() { close(s.ready) })

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

func (s *Server) buildServices(store docstore.Store, limits retrieval.Limits, listing config.ListingConfig) *svcctx.Services {
	return &svcctx.Services{
		Store:    store,
		Resolver: retrieval.NewResolver(limits),
		Listing:  listing,
		Metrics:  s.metrics,
		Logger:   s.logger,
		Home:     s.cfg.Home,
	}
}

func limitsFrom(c *config.Config) retrieval.Limits {
	return retrieval.Limits{
		DefaultMaxLength: c.Retrieval.DefaultMaxLength,
		MaxLengthCap:     c.Retrieval.MaxLengthCap,
	}
}

// shutdown gracefully stops the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Ready is closed once the server is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address once listening, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Store returns the document store. Returns nil before Start.
func (s *Server) Store() docstore.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Handler returns the full HTTP handler chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc := s.services.Load(); svc != nil {
			ctx = svcctx.WithServices(ctx, svc)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the document store is open.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc := s.services.Load(); svc == nil || svc.Store == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
