// Package server provides HTTP server management and lifecycle handling
// for the diagnosis search service: router setup, middleware chain,
// route registration, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux for the dev profiling server
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idea4rc/diagnosis-search/config"
	"github.com/idea4rc/diagnosis-search/data"
	"github.com/idea4rc/diagnosis-search/handlers"
	"github.com/idea4rc/diagnosis-search/health"
	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/metrics"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/validation"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataContainer *data.Container
	engine        *search.Engine
	validator     interfaces.DataValidator
	checker       interfaces.HealthChecker
	config        *config.Config
}

// NewServer creates a new server instance wired to the data container
// and search engine
func NewServer(cfg *config.Config, dataContainer *data.Container, engine *search.Engine) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataContainer: dataContainer,
		engine:        engine,
		validator:     validation.NewDataValidator(),
		checker:       health.NewHealthChecker(dataContainer),
		config:        cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware) // Put BEFORE RealIPMiddleware to see original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// API routes
	s.router.Post("/search", handlers.Search(s.dataContainer, s.engine, s.validator))
	s.router.Get("/filters", handlers.Filters(s.dataContainer))
	s.router.Get("/filters/groups/{macroId}", handlers.FilterGroups(s.engine, s.validator))
	s.router.Get("/filters/sites/{groupId}", handlers.FilterSites(s.engine, s.validator))
	s.router.Get("/database/{pageNumber}", handlers.ServePagedTerms(s.dataContainer))
	s.router.Get("/database", handlers.ServeAllTerms(s.dataContainer))
	s.router.Get("/diagnosis/{id}", handlers.FindTerm(s.dataContainer))
	s.router.Get("/health", handlers.HealthCheck(s.checker))
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Static UI routes
	s.setupStaticRoutes()
}

// setupStaticRoutes configures the search UI and static file routes
func (s *Server) setupStaticRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600") // 1 hour
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, "html/index.html")
	})

	s.router.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000") // 1 year
		w.Header().Set("Content-Type", "image/x-icon")
		http.ServeFile(w, r, "html/favicon.ico")
	})
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Error("Profiling server failed", "error", err)
		}
	}()
}
