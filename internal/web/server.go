package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/talentflow/dedupe/internal/service"
	"github.com/talentflow/dedupe/internal/web/handlers"
	"github.com/talentflow/dedupe/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	service    *service.Service
	logger     *slog.Logger
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
}

// NewServer creates a new web server instance over svc
func NewServer(config *Config, svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		config:  config,
		service: svc,
		logger:  logger,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Handler returns the fully wrapped handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.MergeEnabled = s.config.Features.MergeEnabled
	handlerConfig.Features.ConfigUpdateEnabled = s.config.Features.ConfigUpdateEnabled
	handlerConfig.GroupWorkers = s.config.Detection.GroupWorkers

	duplicatesHandler := &handlers.DuplicatesHandler{Service: s.service, Config: handlerConfig, Logger: s.logger}
	mergeHandler := &handlers.MergeHandler{Service: s.service, Config: handlerConfig, Logger: s.logger}
	candidatesHandler := &handlers.CandidatesHandler{Service: s.service, Logger: s.logger}
	configHandler := &handlers.ConfigHandler{Detector: s.service.Detector(), Config: handlerConfig, Logger: s.logger}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/duplicates/check", duplicatesHandler.Check).Methods("POST")
	api.HandleFunc("/duplicates/groups", duplicatesHandler.Groups).Methods("GET")

	api.HandleFunc("/candidates/{id}", candidatesHandler.Get).Methods("GET")

	api.HandleFunc("/merge/preview", mergeHandler.Preview).Methods("POST")
	api.HandleFunc("/merge", mergeHandler.Merge).Methods("POST")
	api.HandleFunc("/merge/history/{id}", mergeHandler.History).Methods("GET")

	api.HandleFunc("/config", configHandler.Get).Methods("GET")
	api.HandleFunc("/config", configHandler.Update).Methods("PUT")

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Apply middleware
	s.router.Use(middleware.RequestLogging(s.logger))

	if s.config.Auth.Enabled {
		// Apply authentication middleware to API routes only
		api.Use(middleware.Authentication(s.config.Auth.APIKey))
	}

	// CORS wraps the router so preflight requests never reach route matching
	s.handler = middleware.CORS(s.config.Server.AllowedOrigins...)(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
