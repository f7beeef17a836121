package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sundayezeilo/readit/internal/actions"
	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/categories"
	"github.com/sundayezeilo/readit/internal/config"
	"github.com/sundayezeilo/readit/internal/httpx"
	"github.com/sundayezeilo/readit/internal/links"
)

const (
	APIPrefix     = "/api/v1"
	ActionsPrefix = "/actions"

	healthTimeout = 2 * time.Second
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the handlers and collaborators the server routes to.
type Deps struct {
	Links      *links.Handler
	Categories *categories.Handler
	Actions    *actions.FormHandler
	Auth       auth.Resolver
	DB         Pinger
}

// Server represents the HTTP server with all dependencies.
type Server struct {
	config *config.Config
	logger *slog.Logger
	deps   Deps
	server *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	handler := s.applyMiddleware(s.setupRoutes())
	if s.config.Observability.Enabled {
		handler = otelhttp.NewHandler(handler, s.config.Observability.ServiceName)
	}
	return handler
}

// Start starts the HTTP server and blocks until shutdown. It returns when ctx
// is cancelled or the process receives SIGINT or SIGTERM.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())

	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /x/health", s.healthCheckHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	if s.deps.Links != nil {
		s.deps.Links.Register(api, APIPrefix)
	}
	if s.deps.Categories != nil {
		s.deps.Categories.Register(api, APIPrefix)
	}
	mux.Handle(APIPrefix+"/", auth.RequireUser(api))

	// Procedures answer unauthenticated callers with a redirect, not a 401.
	if s.deps.Actions != nil {
		s.deps.Actions.Register(mux, ActionsPrefix)
	}

	return mux
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	middlewares := []httpx.Middleware{
		httpx.Recovery(s.logger), // Outermost: catch panics
		httpx.RequestID,
		httpx.Logger(s.logger),
		httpx.CORS(s.config.Server.CORSOrigins),
	}
	if s.deps.Auth != nil {
		middlewares = append(middlewares, auth.Middleware(s.deps.Auth, s.logger))
	}
	middlewares = append(middlewares, httpx.Metrics) // Innermost: sees the mux pattern

	return httpx.Chain(middlewares...)(handler)
}

// healthCheckHandler handles health check requests.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := s.deps.DB.Ping(ctx); err != nil {
			httpx.RequestLogger(s.logger, r).WarnContext(ctx, "health check failed", "error", err.Error())
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	httpx.WriteJSON(w, code, map[string]string{
		"status":  status,
		"service": s.config.Observability.ServiceName,
		"version": s.config.Observability.ServiceVersion,
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
